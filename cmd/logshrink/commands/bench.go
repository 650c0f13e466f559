package commands

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/brask/logshrink/internal/logshrink"
	"github.com/brask/logshrink/internal/syslogparse"
	"github.com/brask/logshrink/pkg/hyperloglog"
)

var (
	benchCount  int
	benchOutput string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure raw-vs-compressed archive size over synthetic logs",
	RunE:  runBench,
}

func init() {
	benchCmd.Flags().IntVar(&benchCount, "count", 10000, "number of synthetic messages to archive")
	benchCmd.Flags().StringVar(&benchOutput, "output", "bench.lshrink", "base path; each sealed chunk is written to <output>.NNNN")
}

const benchSealThreshold = 1000

func runBench(cmd *cobra.Command, args []string) error {
	os.Remove(benchOutput)

	var rawSize int64
	var compressedSize int64
	var chunksSaved int
	chunk := logshrink.NewChunk()
	hostSketch := hyperloglog.New(14)
	templateSketch := hyperloglog.New(14)

	// Each sealed chunk gets its own numbered path alongside
	// --output; bench reports the sum of their sizes, not just the
	// last one, the way a real deployment's --output directory would
	// accumulate one archive per seal.
	sealChunk := func() error {
		newPatterns := chunk.FinishAndProcess()
		path := fmt.Sprintf("%s.%04d", benchOutput, chunksSaved)
		if err := logshrink.Encode(chunk, path); err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		compressedSize += info.Size()
		for _, pattern := range newPatterns {
			templateSketch.Add(pattern)
		}
		chunksSaved++
		return nil
	}

	for i := 0; i < benchCount; i++ {
		line := benchLine(i)
		rawSize += int64(len(line))

		event, err := syslogparse.Parse(line)
		if err != nil {
			continue
		}
		if event.Hostname != nil {
			hostSketch.Add(*event.Hostname)
		}
		if err := chunk.AddMessage(event); err != nil {
			return errIOOrFormat("adding bench message: %v", err)
		}

		if (i+1)%benchSealThreshold == 0 {
			if err := sealChunk(); err != nil {
				return errIOOrFormat("encoding bench chunk: %v", err)
			}
			chunk = logshrink.NewChunk()
		}
	}

	if chunk.Len() > 0 {
		if err := sealChunk(); err != nil {
			return errIOOrFormat("encoding final bench chunk: %v", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Benchmark Results:")
	fmt.Fprintln(out, "------------------")
	fmt.Fprintf(out, "Log Count:        %d\n", benchCount)
	fmt.Fprintf(out, "Raw Text Size:    %s\n", humanize.Bytes(uint64(rawSize)))
	fmt.Fprintf(out, "LogShrink Size:   %s\n", humanize.Bytes(uint64(compressedSize)))
	if compressedSize > 0 {
		ratio := float64(rawSize) / float64(compressedSize)
		savings := (1.0 - float64(compressedSize)/float64(rawSize)) * 100.0
		fmt.Fprintf(out, "Reduction Ratio:  %.2fx\n", ratio)
		fmt.Fprintf(out, "Space Savings:    %.1f%%\n", savings)
	}
	fmt.Fprintf(out, "Chunks Saved:     %d\n", chunksSaved)
	fmt.Fprintf(out, "Distinct Hosts:   ~%d\n", hostSketch.Count())
	fmt.Fprintf(out, "Distinct Templates: ~%d\n", templateSketch.Count())
	return nil
}

func benchLine(i int) string {
	user := "alice"
	if i%2 != 0 {
		user = "bob"
	}
	return fmt.Sprintf(
		"<34>1 2023-10-11T22:14:15.003Z myhost myapp %d ID47 [exampleSDID@32473] User %s failed login from IP 192.168.1.%d",
		1000+(i%10), user, i%255,
	)
}
