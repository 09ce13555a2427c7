// Command catalog-index builds the local style indices served by
// catalog-api and reports on search traffic.
package main

func main() {
	Execute()
}
