package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

const dateLayout = "2006-01-02"

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "Show and manage stored words",
	RunE:  runWordsList,
}

var wordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored words",
	Long: `Lists the stored starred words in page order.

Examples:
  starsync words list
  starsync words list --pair en-de
  starsync words list --unsynced`,
	RunE: runWordsList,
}

var wordsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count stored and unexported words",
	RunE:  runWordsCount,
}

var wordsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored words",
	Long: `Deletes every stored word. The spreadsheet is not touched.
Asks for confirmation unless --yes is given.`,
	RunE: runWordsClear,
}

var (
	wordsPair     string
	wordsUnsynced bool
	wordsYes      bool
)

func init() {
	wordsListCmd.Flags().StringVar(&wordsPair, "pair", "", "Only show one language pair (e.g. en-de or en→de)")
	wordsListCmd.Flags().BoolVar(&wordsUnsynced, "unsynced", false, "Only show words not yet exported")
	wordsClearCmd.Flags().BoolVarP(&wordsYes, "yes", "y", false, "Do not ask for confirmation")

	wordsCmd.AddCommand(wordsListCmd)
	wordsCmd.AddCommand(wordsCountCmd)
	wordsCmd.AddCommand(wordsClearCmd)
	rootCmd.AddCommand(wordsCmd)
}

func runWordsList(cmd *cobra.Command, _ []string) error {
	if err := requireService(wordService, "word service"); err != nil {
		return err
	}

	words, err := wordService.List(commandContext(cmd), wordsPair)
	if err != nil {
		return err
	}
	if wordsUnsynced {
		words = filterUnsynced(words)
	}

	if len(words) == 0 {
		cmd.Println("No words stored. Run 'starsync extract' to collect them.")
		return nil
	}

	renderWords(cmd, words)
	return nil
}

func renderWords(cmd *cobra.Command, words []domain.StarredWord) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Languages", "Source", "Target", "First Seen", "Exported"})

	for i := range words {
		w := &words[i]
		exported := ""
		if w.IsSynced() {
			exported = w.SyncedAt.Local().Format(dateLayout)
		}
		t.AppendRow(table.Row{i + 1, w.LanguagePair(), w.SourceText, w.TargetText, w.FirstSeen.Local().Format(dateLayout), exported})
	}

	t.AppendFooter(table.Row{"", "", "", "", "Total", len(words)})
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func filterUnsynced(words []domain.StarredWord) []domain.StarredWord {
	out := words[:0:0]
	for _, w := range words {
		if !w.IsSynced() {
			out = append(out, w)
		}
	}
	return out
}

func runWordsCount(cmd *cobra.Command, _ []string) error {
	if err := requireService(wordService, "word service"); err != nil {
		return err
	}

	total, unsynced, err := wordService.Count(commandContext(cmd))
	if err != nil {
		return err
	}
	cmd.Printf("Stored: %d\n", total)
	cmd.Printf("Not exported: %d\n", unsynced)
	return nil
}

func runWordsClear(cmd *cobra.Command, _ []string) error {
	if err := requireService(wordService, "word service"); err != nil {
		return err
	}

	if !wordsYes && !confirm(cmd, "Delete all stored words?") {
		cmd.Println("Cancelled.")
		return nil
	}

	if err := wordService.Clear(commandContext(cmd)); err != nil {
		return err
	}
	cmd.Println("All stored words deleted.")
	return nil
}

// confirm asks a yes/no question on the command's input. Anything but y/yes is no.
func confirm(cmd *cobra.Command, question string) bool {
	cmd.Printf("%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, err := reader.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// plural returns "word" or "words".
func plural(n int, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}
