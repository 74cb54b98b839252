package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"github.com/matiin1402/InternalLinkBot/handler"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda behind API Gateway",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateLambda(); err != nil {
			return err
		}
		a, err := buildApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		h, err := handler.NewHandler(a.dispatcher, cfg.WebhookSecret)
		if err != nil {
			return err
		}
		lambda.Start(h.Handle)
		return nil
	},
}
