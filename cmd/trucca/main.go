// Command trucca manages the records of the Trực Ca AI operations API.
package main

func main() {
	Execute()
}
