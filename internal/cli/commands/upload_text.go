package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"TempShare/internal/config"
)

type uploadTextCmd struct{}

func (uploadTextCmd) Name() string { return "upload-text" }
func (uploadTextCmd) Description() string {
	return "Загрузить текст и получить код (\"-\" — читать из stdin)"
}
func (uploadTextCmd) Usage() string { return "upload-text <text...>|-" }

// In — источник для "upload-text -". В тестах может переназначаться.
var In io.Reader = os.Stdin

func (uploadTextCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	content := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		b, err := io.ReadAll(In)
		if err != nil {
			return err
		}
		content = string(b)
	}
	if strings.TrimSpace(content) == "" {
		return ErrUsage
	}

	client, done, err := openClient(cfg, false)
	if err != nil {
		return err
	}
	defer done()

	res, err := client.UploadText(ctx, content)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Код: %s\n", res.Code)
	fmt.Fprintf(Out, "• Истекает: %s\n", expiresIn(res.Expires(), client.Now()))
	return nil
}

func init() { RegisterCmd(uploadTextCmd{}) }
