package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mithrel/inkwell/internal/config"
	"github.com/mithrel/inkwell/internal/db"
	"github.com/mithrel/inkwell/internal/wire"
)

// main starts the inkwell LSP server. It offers earlier prompts from the
// history database as completions while a prompt scratch file is edited.
func main() {
	logFile, err := os.Create(filepath.Join(os.TempDir(), "inkwell-lsp.log"))
	if err != nil {
		panic(err)
	}
	defer logFile.Close()

	ctx := context.Background()
	v := viper.New()
	loadErr := config.Load(ctx, v)
	logger, err := wire.NewLogger(v, logFile)
	if err != nil {
		logger = logrus.New()
		logger.SetOutput(logFile)
		logger.WithError(err).Warn("invalid log settings")
	}
	if loadErr != nil {
		logger.WithError(loadErr).Fatal("load config")
	}
	logger.Info("server started")

	if !v.GetBool("history.enabled") {
		logger.Warn("history is disabled; completions will be empty")
	}
	dsn := historyDSN(v)
	if dsn != "mem://" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o700); err != nil {
			logger.WithError(err).Fatal("create data dir")
		}
	}
	store, closer, err := db.Open(ctx, dsn)
	if err != nil {
		logger.WithError(err).Fatal("open history")
	}
	defer closer.Close()

	srv := &server{
		log: logger,
		out: os.Stdout,
		prompts: func(ctx context.Context) ([]string, error) {
			return store.Posts.Prompts(ctx, maxPrompts)
		},
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		msg, err := readMessage(reader)
		if err != nil {
			if err != io.EOF {
				logger.WithError(err).Error("read message")
			}
			return
		}
		if srv.handleMessage(ctx, msg) {
			return
		}
	}
}

func historyDSN(v *viper.Viper) string {
	if !v.GetBool("history.enabled") {
		return "mem://"
	}
	return config.ResolveDBPath(v)
}

// readMessage reads a single Content-Length framed JSON-RPC message.
func readMessage(reader *bufio.Reader) ([]byte, error) {
	contentLength := 0
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "Content-Length: ") {
			length, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = length
		}
	}

	if contentLength <= 0 {
		return nil, fmt.Errorf("missing Content-Length")
	}

	msg := make([]byte, contentLength)
	if _, err := io.ReadFull(reader, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
