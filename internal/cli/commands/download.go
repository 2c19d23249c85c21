package commands

import (
	"context"
	"fmt"

	"TempShare/internal/cli/service"
	"TempShare/internal/config"

	"github.com/dustin/go-humanize"
)

type downloadCmd struct{}

func (downloadCmd) Name() string { return "download" }
func (downloadCmd) Description() string {
	return "Скачать файл по коду в каталог (по умолчанию текущий)"
}
func (downloadCmd) Usage() string { return "download <code> [dest-dir]" }

func (downloadCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return ErrUsage
	}
	dest := "."
	if len(args) == 2 {
		dest = args[1]
	}
	client := service.NewShareClient(cfg.ServerURL, nil)
	path, n, err := client.Download(ctx, args[0], dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "✓ Сохранено: %s (%s)\n", path, humanize.IBytes(uint64(n)))
	return nil
}

func init() { RegisterCmd(downloadCmd{}) }
