package commands

import (
	"context"
	"fmt"

	"TempShare/internal/cli/service"
	"TempShare/internal/config"

	"github.com/dustin/go-humanize"
)

type retrieveCmd struct{}

func (retrieveCmd) Name() string { return "retrieve" }
func (retrieveCmd) Description() string {
	return "Показать содержимое по коду"
}
func (retrieveCmd) Usage() string { return "retrieve <code>" }

func (retrieveCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	client := service.NewShareClient(cfg.ServerURL, nil)
	sh, err := client.Retrieve(ctx, args[0])
	if err != nil {
		return err
	}

	switch sh.Type {
	case "text":
		fmt.Fprintln(Out, sh.Content)
	case "file":
		fmt.Fprintf(Out, "Файл: %s\n", sh.FileName)
		fmt.Fprintf(Out, "Тип: %s\n", sh.FileType)
		if sh.FileSize != nil {
			fmt.Fprintf(Out, "Размер: %s\n", humanize.IBytes(uint64(*sh.FileSize)))
		}
		fmt.Fprintf(Out, "URL: %s\n", sh.FileURL)
	default:
		return fmt.Errorf("unexpected content type %q", sh.Type)
	}
	fmt.Fprintf(Out, "Истекает: %s\n", expiresIn(sh.Expires(), client.Now()))
	return nil
}

func init() { RegisterCmd(retrieveCmd{}) }
