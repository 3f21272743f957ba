package main

import (
	"context"
	"fmt"
	"os"

	"github.com/outfitcal/daybook/internal/buildinfo"
	"github.com/outfitcal/daybook/internal/client/cli"
	"github.com/outfitcal/daybook/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	fmt.Println("Daybook CLI (type 'help' for commands)")
	app.Run(ctx)
}
