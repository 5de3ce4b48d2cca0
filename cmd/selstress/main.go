// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command selstress drives producers on several channels and one consumer
// selecting across all of them, and reports selection outcomes.
package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/sel"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	path := flag.String("config", "", "path to a TOML config file")
	flag.Parse()

	cfg, err := loadConfig(*path)
	if err != nil {
		l := initLogger(zerolog.InfoLevel)
		l.Fatal().Err(err).Msg("config")
	}
	logger := initLogger(cfg.LogLevel)
	registerMetrics()

	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("metrics listener stopped")
			}
		}()
	}

	sum := run(cfg, logger)
	logger.Info().
		Int("received", sum.received).
		Int("timed_out", sum.timedOut).
		Dur("elapsed", sum.elapsed).
		Msg("done")
}

func initLogger(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "selstress").Logger()
}

type summary struct {
	received int
	timedOut int
	elapsed  time.Duration
}

func newChannel(cfg config) (*sel.Sender[int], *sel.Receiver[int]) {
	switch cfg.Flavor {
	case "list":
		return sel.Unbounded[int]()
	case "array":
		return sel.Bounded[int](cfg.Capacity)
	default:
		return sel.Bounded[int](0)
	}
}

// produce sends messages values on tx, retrying with iox.Backoff while the
// channel is not ready, then closes it.
func produce(tx *sel.Sender[int], messages int, delay time.Duration, logger zerolog.Logger) {
	defer tx.Close()
	var bo iox.Backoff
	for i := range messages {
		if delay > 0 {
			time.Sleep(delay)
		}
		for {
			err := tx.TrySend(i)
			if err == nil {
				bo.Reset()
				break
			}
			if !sel.IsWouldBlock(err) {
				logger.Warn().Err(err).Uint32("endpoint", tx.ID()).Msg("producer stopped")
				return
			}
			bo.Wait()
		}
	}
}

func run(cfg config, logger zerolog.Logger) summary {
	rxs := make([]*sel.Receiver[int], cfg.Channels)
	var wg sync.WaitGroup
	for i := range cfg.Channels {
		tx, rx := newChannel(cfg)
		rxs[i] = rx
		wg.Add(1)
		go func() {
			defer wg.Done()
			produce(tx, cfg.Messages, cfg.SendDelay, logger)
		}()
	}

	cases := make([]sel.Case, len(rxs))
	for i, rx := range rxs {
		cases[i] = sel.OnRecv(rx)
	}

	opts := []sel.Option{sel.WithLogger(logger)}
	var sum summary
	start := time.Now()
	for {
		if cfg.Seed != 0 {
			// Vary the stream per selection but keep the run reproducible.
			opts = []sel.Option{sel.WithLogger(logger), sel.WithSeed(cfg.Seed + uint64(sum.received+sum.timedOut))}
		}
		began := time.Now()
		i, _, err := sel.Run(sel.WithTimeout(cfg.Timeout, opts...), cases...)
		switch {
		case err == nil:
			sum.received++
			recordSelection(cfg.Flavor, outcomeReceived, time.Since(began))
			logger.Trace().Int("case", i).Msg("received")
			continue
		case errors.Is(err, sel.ErrTimeout):
			sum.timedOut++
			recordSelection(cfg.Flavor, outcomeTimedOut, time.Since(began))
			logger.Debug().Dur("timeout", cfg.Timeout).Msg("selection timed out")
			continue
		case errors.Is(err, sel.ErrDisconnected):
			recordSelection(cfg.Flavor, outcomeDisconnected, time.Since(began))
		default:
			logger.Error().Err(err).Msg("selection failed")
		}
		break
	}
	sum.elapsed = time.Since(start)
	wg.Wait()
	return sum
}
