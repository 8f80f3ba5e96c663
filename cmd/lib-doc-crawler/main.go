// Package main provides the lib-doc-crawler command line interface.
package main

func main() {
	Execute()
}
