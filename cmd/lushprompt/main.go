// Command lushprompt is a demo and integration-test harness for the prompt
// rendering core: it wires internal/shellintegration.Root the way a hosting
// shell would, then renders a single prompt or lists the available themes,
// so the core can be exercised end to end without a real line editor.
package main

func main() {
	Execute()
}
