// Command revrank 过滤低质量评论，并在每个商品组内按两两比较的胜率排序。
//
//	revrank --file_name reviews.csv --model_path resources/model.json --output ranked.csv
//	revrank --config revrank.yaml --testing
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rushteam/revrank/app"
	"github.com/rushteam/revrank/config"
	"github.com/rushteam/revrank/core"
	"github.com/rushteam/revrank/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// parseArgs 解析命令行，返回配置文件路径与覆盖项；只有显式传入的参数才覆盖文件与环境变量。
func parseArgs(args []string, usage io.Writer) (string, map[string]any, error) {
	fs := flag.NewFlagSet("revrank", flag.ContinueOnError)
	fs.SetOutput(usage)
	var (
		configPath     = fs.String("config", "", "YAML settings file")
		spellThreshold = fs.Float64("spell_threshold", 0, "gibberish threshold; 0 keeps the model default")
		modelPath      = fs.String("model_path", "", "classifier model file")
		fileName       = fs.String("file_name", "", "input CSV with group_key/product and text/answer_option columns")
		evalMode       = fs.Bool("testing", false, "evaluation mode: input carries 0/1 labels, report top-k accuracy")
		output         = fs.String("output", "", "ranked output CSV")
		pipelinePath   = fs.String("pipeline", "", "pipeline topology YAML")
		logLevel       = fs.String("log_level", "", "trace, debug, info, warn or error")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s --file_name FILE [options]\n\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return "", nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidConfig, "cli: parse flags", err)
	}
	// --testing False 会被解析成 --testing 加一个位置参数
	if fs.NArg() > 0 {
		return "", nil, core.ConfigError("cli: unexpected arguments %q; boolean flags are written --testing or --testing=false",
			strings.Join(fs.Args(), " "))
	}

	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "spell_threshold":
			overrides["filter.spell_threshold"] = *spellThreshold
		case "model_path":
			overrides["model.path"] = *modelPath
		case "file_name":
			overrides["input.path"] = *fileName
		case "testing":
			overrides["eval.enabled"] = *evalMode
		case "output":
			overrides["output.csv_path"] = *output
		case "pipeline":
			overrides["pipeline"] = *pipelinePath
		case "log_level":
			overrides["log.level"] = *logLevel
		}
	})
	return *configPath, overrides, nil
}

func run(args []string, stdout io.Writer) int {
	configPath, overrides, err := parseArgs(args, os.Stderr)
	if err != nil {
		return fail(err)
	}
	settings, err := config.Load(configPath, overrides)
	if err != nil {
		return fail(err)
	}
	logging.Init(logging.Config{Level: settings.Log.Level, Format: settings.Log.Format})

	a, err := app.New(settings)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logging.Warn().Err(err).Msg("close failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.Run(ctx)
	if err != nil {
		return fail(err)
	}
	printResult(stdout, res)
	return 0
}

// printResult 输出被丢弃的评论与评估结果，便于人工核查。
func printResult(w io.Writer, res *app.Result) {
	if res.Filter != nil && len(res.Filter.Discards) > 0 {
		fmt.Fprintf(w, "discarded reviews (%d):\n", len(res.Filter.Discards))
		for _, d := range res.Filter.Discards {
			fmt.Fprintf(w, "  %s\t#%d\t[%s]\t%s\n", d.GroupKey, d.ID, strings.Join(d.Categories, ","), d.Text)
		}
	}
	if ev := res.Evaluate; ev != nil {
		for _, g := range ev.Groups {
			if g.Degenerate {
				fmt.Fprintf(w, "%s\tno positive labels\n", g.GroupKey)
				continue
			}
			fmt.Fprintf(w, "%s\taccuracy %.4f (%d/%d)\n", g.GroupKey, g.Accuracy, g.Hits, g.Positives)
		}
		fmt.Fprintf(w, "mean top-k accuracy: %.4f over %d groups (valid=%t)\n",
			ev.Mean, len(ev.Groups)-len(ev.DegenerateGroups()), ev.Valid)
	}
}

func fail(err error) int {
	if core.IsInvalidConfig(err) {
		logging.Error().Err(err).Msg("configuration error")
	} else {
		logging.Error().Err(err).Msg("run failed")
	}
	return 1
}
