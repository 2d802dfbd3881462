// Command exam-taker runs a public exam in the terminal against the exam API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/istanbulinstitute/educrm-exam/internal/i18n"
	"github.com/istanbulinstitute/educrm-exam/internal/logger"
	"github.com/istanbulinstitute/educrm-exam/internal/model"
	"github.com/istanbulinstitute/educrm-exam/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "exam-taker <exam-code>",
		Short:         "Take a public exam in the terminal",
		Args:          cobra.ExactArgs(1),
		RunE:          runExam,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	f := cmd.Flags()
	f.String("api", "http://localhost:8080", "Exam API base URL")
	f.StringP("lang", "l", "tr", "Language (tr, en)")
	f.String("first-name", "", "First name")
	f.String("last-name", "", "Last name")
	f.StringP("email", "e", "", "Email address")
	f.Bool("check-eligibility", false, "Check registration and payment for the email before starting")
	f.Duration("timeout", 15*time.Second, "HTTP request timeout")
	f.String("log-level", "warn", "Log level (debug, info, warn, error)")
	f.String("log-format", "pretty", "Log format (pretty, json)")
	return cmd
}

// viperForCmd binds a command's flags and EXAM_TAKER_* environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EXAM_TAKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("exam-taker")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/educrm")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
	return v
}

func runExam(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	log := logger.New(os.Stderr, v.GetString("log-level"), v.GetString("log-format"))

	bundle, err := i18n.New("tr")
	if err != nil {
		return err
	}
	lang := v.GetString("lang")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := session.NewHTTPClient(v.GetString("api"), lang, v.GetDuration("timeout"))
	r := newRunner(os.Stdin, os.Stdout, bundle.Localizer(lang))
	r.checkEligibility = v.GetBool("check-eligibility")
	sess := session.New(client,
		session.WithLogger(log),
		session.WithOnTick(r.onTick),
		session.WithOnAutoSubmit(r.onAutoSubmit),
	)

	info := model.CandidateInfo{
		FirstName: v.GetString("first-name"),
		LastName:  v.GetString("last-name"),
		Email:     v.GetString("email"),
	}
	return r.run(ctx, sess, args[0], info)
}
