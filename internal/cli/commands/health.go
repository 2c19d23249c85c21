package commands

import (
	"context"
	"fmt"

	"TempShare/internal/cli/service"
	"TempShare/internal/config"
)

type healthCmd struct{}

func (healthCmd) Name() string        { return "health" }
func (healthCmd) Description() string { return "Проверить доступность сервера" }
func (healthCmd) Usage() string       { return "health" }

func (healthCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	h, err := service.NewShareClient(cfg.ServerURL, nil).Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Status: %s (%s)\n", h.Message, h.Timestamp)
	return nil
}

func init() { RegisterCmd(healthCmd{}) }
