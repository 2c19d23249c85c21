package commands

import (
	"fmt"
	"time"

	"TempShare/internal/cli/bootstrap"
	"TempShare/internal/cli/service"
	"TempShare/internal/config"

	"github.com/dustin/go-humanize"
)

// openClient создаёт клиента API. Для команд загрузки история необязательна:
// если локальную БД открыть не удалось, загрузка всё равно выполняется.
func openClient(cfg *config.Config, needHistory bool) (*service.ShareClient, func(), error) {
	hist, done, err := bootstrap.OpenHistoryRepo(cfg)
	if err != nil {
		if needHistory {
			return nil, nil, err
		}
		fmt.Fprintf(Out, "! История недоступна: %v\n", err)
		return service.NewShareClient(cfg.ServerURL, nil), func() {}, nil
	}
	client := service.NewShareClient(cfg.ServerURL, hist)
	client.OnHistoryError(func(code string, err error) {
		fmt.Fprintf(Out, "! Код %s не сохранён в истории: %v\n", code, err)
	})
	return client, func() { _ = done() }, nil
}

// expiresIn — человекочитаемый остаток времени жизни.
func expiresIn(exp, now time.Time) string {
	if !exp.After(now) {
		return "expired"
	}
	return fmt.Sprintf("%s (%s)", humanize.RelTime(exp, now, "ago", "left"), exp.Local().Format("2006-01-02 15:04"))
}
