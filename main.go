// Command hexovault converts Hexo blog pages into Markdown notes.
package main

import "github.com/gaurav-prasanna/hexovault/cmd"

func main() {
	cmd.Execute()
}
