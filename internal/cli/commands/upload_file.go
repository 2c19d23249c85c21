package commands

import (
	"context"
	"fmt"
	"os"

	"TempShare/internal/config"

	"github.com/dustin/go-humanize"
)

type uploadFileCmd struct{}

func (uploadFileCmd) Name() string { return "upload-file" }
func (uploadFileCmd) Description() string {
	return "Загрузить файл и получить код"
}
func (uploadFileCmd) Usage() string { return "upload-file <path>" }

func (uploadFileCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return ErrUsage
	}
	path := args[0]

	client, done, err := openClient(cfg, false)
	if err != nil {
		return err
	}
	defer done()

	fmt.Fprintf(Out, "→ Загрузка %s…\n", path)
	res, err := client.UploadFile(ctx, path)
	if err != nil {
		return err
	}
	if st, err := os.Stat(path); err == nil {
		fmt.Fprintf(Out, "• Размер: %s\n", humanize.IBytes(uint64(st.Size())))
	}
	fmt.Fprintf(Out, "✓ Код: %s\n", res.Code)
	fmt.Fprintf(Out, "• Истекает: %s\n", expiresIn(res.Expires(), client.Now()))
	return nil
}

func init() { RegisterCmd(uploadFileCmd{}) }
