// Command sessiond serves and inspects goSession cookie sessions.
package main

func main() {
	Execute()
}
