package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
)

// RunInteractive starts the interactive shell. It only returns when the
// user exits.
func (a *App) RunInteractive() {
	fmt.Printf("\n%sgo2web interactive shell%s\n", colorCyan, colorReset)
	fmt.Printf("%sType help for commands, exit to quit%s\n\n", colorGray, colorReset)

	p := prompt.New(
		a.execute,
		completer,
		prompt.OptionTitle("go2web"),
		prompt.OptionPrefix("go2web> "),
		prompt.OptionPrefixTextColor(prompt.Cyan),
	)
	p.Run()
}

func (a *App) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "fetch":
		if len(args) != 1 {
			fmt.Println("usage: fetch <url>")
			return
		}
		err = a.FetchURL(args[0])

	case "search":
		if len(args) == 0 {
			fmt.Println("usage: search <query>")
			return
		}
		err = a.Search(strings.Join(args, " "))

	case "open":
		if len(args) < 2 {
			fmt.Println("usage: open <rank> <query>")
			return
		}
		rank, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			fmt.Println("usage: open <rank> <query>")
			return
		}
		err = a.Open(strings.Join(args[1:], " "), rank)

	case "clear-cache":
		err = a.ClearCache()

	case "help":
		printShellHelp()

	case "exit", "quit":
		fmt.Printf("%sBye!%s\n", colorGray, colorReset)
		os.Exit(0)

	default:
		fmt.Printf("unknown command: %s (try help)\n", cmd)
	}

	if err != nil {
		fmt.Println(FormatError(err))
	}
}

func completer(d prompt.Document) []prompt.Suggest {
	suggestions := []prompt.Suggest{
		{Text: "fetch", Description: "Fetch a URL and print readable text"},
		{Text: "search", Description: "Search the web for a term"},
		{Text: "open", Description: "Open the nth result of a search"},
		{Text: "clear-cache", Description: "Remove all cached search results"},
		{Text: "help", Description: "Show available commands"},
		{Text: "exit", Description: "Leave the shell"},
	}
	if strings.Contains(d.TextBeforeCursor(), " ") {
		return nil
	}
	return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
}

func printShellHelp() {
	fmt.Println(`Commands:
  fetch <url>          fetch a URL and print its readable text
  search <query>       search the web and list ranked results
  open <rank> <query>  fetch the nth result of a search
  clear-cache          remove all cached search results
  help                 show this help
  exit                 leave the shell`)
}
