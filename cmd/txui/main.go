// Command txui serves the demo application and inspects stored
// transactions.
package main

func main() {
	Execute()
}
