package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/directory/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug     bool `help:"Enable debug mode."`
		Version   kong.VersionFlag
		Serve     commands.ServeCmd     `cmd:"" help:"Serve the directory API over HTTP"`
		Consume   commands.ConsumeCmd   `cmd:"" help:"Consume directory events from an SQS queue"`
		Lambda    commands.LambdaCmd    `cmd:"" help:"Run as an AWS Lambda function"`
		Bootstrap commands.BootstrapCmd `cmd:"" help:"Create the directory tables and queues"`
	}
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
