// Command annotate runs the annotation tasks against a project.
package main

func main() {
	Execute()
}
