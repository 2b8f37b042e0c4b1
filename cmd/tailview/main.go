package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/user/tailview/internal/config"
	"github.com/user/tailview/internal/index"
	"github.com/user/tailview/internal/suggest"
	"github.com/user/tailview/internal/watch"
	"github.com/user/tailview/pkg/logformat"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	headFlag := flag.Int("n", cfg.Display.HeadLines, "Number of leading lines to print")
	followFlag := flag.Bool("f", false, "Keep printing lines as the file grows")
	tsFlag := flag.Bool("t", cfg.Display.ShowTimestamps, "Show extracted timestamps")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tailview [-n lines] [-f] [-t] <file>\n")
		fmt.Fprintf(os.Stderr, "  -n\tNumber of leading lines to print\n")
		fmt.Fprintf(os.Stderr, "  -f\tFollow the file as it grows\n")
		fmt.Fprintf(os.Stderr, "  -t\tShow extracted timestamps\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)

	idx := index.New(path)
	idx.SetChunkSize(cfg.Index.ScanChunkSize)
	idx.AttachSuggestions(suggest.New(cfg.Suggest.Capacity))

	if err := idx.Open(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer idx.Close()

	if err := idx.ScanBlock(0, idx.Size()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	head := *headFlag
	if head > idx.LineCount() {
		head = idx.LineCount()
	}
	for i := 0; i < head; i++ {
		printLine(idx, i, *tsFlag)
	}
	fmt.Printf("indexed %d lines (%s)\n", idx.LineCount(), humanize.Bytes(uint64(idx.Size())))

	if *followFlag {
		if err := follow(cfg, idx, *tsFlag); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// follow drains change notifications on the main goroutine; the
// watcher only posts events, it never touches the index.
func follow(cfg *config.Config, idx *index.FileIndex, showTimestamps bool) error {
	watcher := watch.New(time.Duration(cfg.Watch.PollIntervalMs) * time.Millisecond)
	watcher.Start()
	defer watcher.Stop()

	events := make(chan watch.Event, 64)
	sub, err := watcher.Watch(idx.Path(), func(ev watch.Event) {
		events <- ev
	})
	if err != nil {
		return err
	}
	defer sub.Cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	printed := idx.LineCount()
	for {
		select {
		case <-sigs:
			return nil

		case ev := <-events:
			switch ev.Kind {
			case watch.Grow:
				if err := idx.Extend(); err != nil {
					return err
				}
			case watch.Reset:
				if err := idx.Reset(); err != nil {
					return err
				}
				fmt.Printf("-- %s replaced, reindexed %d lines --\n", idx.Path(), idx.LineCount())
				printed = 0
			case watch.Lost:
				fmt.Printf("-- %s lost, waiting --\n", idx.Path())
				continue
			}

			for ; printed < idx.LineCount(); printed++ {
				printLine(idx, printed, showTimestamps)
			}
		}
	}
}

func printLine(idx *index.FileIndex, i int, showTimestamps bool) {
	text, ts := idx.Text(i)
	if ts != nil && showTimestamps {
		fmt.Printf("%s  %s\n", logformat.FormatTime(ts), text)
	} else {
		fmt.Println(text)
	}
}
