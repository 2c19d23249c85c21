package commands

import (
	"context"
	"fmt"

	"TempShare/internal/config"

	"github.com/dustin/go-humanize"
)

type historyCmd struct{}

func (historyCmd) Name() string { return "history" }
func (historyCmd) Description() string {
	return "Показать свои ещё живые загрузки"
}
func (historyCmd) Usage() string { return "history" }

func (historyCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	client, done, err := openClient(cfg, true)
	if err != nil {
		return err
	}
	defer done()

	list, pruned, err := client.History(ctx)
	if err != nil {
		return err
	}
	if pruned > 0 {
		fmt.Fprintf(Out, "• Удалено истёкших: %d\n", pruned)
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет активных загрузок")
		return nil
	}
	now := client.Now()
	for _, e := range list {
		size := ""
		if e.Kind == "file" {
			size = "  " + humanize.IBytes(uint64(e.SizeBytes))
		}
		fmt.Fprintf(Out, "- %s  %-4s  %s%s  %s\n", e.Code, e.Kind, e.Label, size, expiresIn(e.ExpiresAt, now))
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

func init() { RegisterCmd(historyCmd{}) }
