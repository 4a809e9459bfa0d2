package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/regula/internal/core/domain"
)

// maxStdinQuestion bounds a question read from a pipe.
const maxStdinQuestion = 64 << 10

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the regulations",
	Long: `Retrieve the articles most relevant to a question and compose an
answer that cites them.

The question is taken from the arguments, or from stdin when it is piped:
  echo "宿舍居室的净高有什么要求？" | regula ask`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("json", false, "print the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("getting json flag: %w", err)
	}

	question, err := readQuestion(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	svc, err := requireAsk()
	if err != nil {
		return err
	}
	answer, err := svc.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}
	printAnswer(cmd.OutOrStdout(), answer)
	return nil
}

// readQuestion joins args, falling back to in when it is not a terminal.
func readQuestion(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(strings.Join(args, " ")), nil
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", fmt.Errorf("%w: pass a question as an argument or on stdin", domain.ErrInvalidInput)
	}
	data, err := io.ReadAll(io.LimitReader(in, maxStdinQuestion))
	if err != nil {
		return "", fmt.Errorf("read question: %w", err)
	}
	q := strings.TrimSpace(string(data))
	if q == "" {
		return "", errors.New("请输入问题")
	}
	return q, nil
}

func printAnswer(out io.Writer, a *domain.Answer) {
	fmt.Fprintln(out, "回答")
	fmt.Fprintln(out, a.Text)
	if len(a.References) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "参考条文")
	for i, ref := range a.References {
		fmt.Fprintf(out, "%d. 规范名称：%s\n", i+1, ref.SpecName)
		fmt.Fprintf(out, "   条文编号：%s\n", ref.ArticleID)
		fmt.Fprintf(out, "   相似度：%.2f%%\n", ref.Similarity*100)
	}
}
