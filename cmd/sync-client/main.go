package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"mangapages/internal/logging"
	synchub "mangapages/internal/sync"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.Component(logging.New(*level), "sync-client")
	for {
		if err := run(log, *addr, *pretty); err != nil {
			log.WithError(err).Warn("disconnected")
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func run(log *logrus.Entry, addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Infof("connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		fmt.Println(format(sc.Bytes(), pretty))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

// format renders page events as one summary line; anything else is printed
// as (optionally indented) JSON or raw text.
func format(line []byte, pretty bool) string {
	var ev synchub.PageEvent
	if err := json.Unmarshal(line, &ev); err == nil && ev.PageID != "" {
		return fmt.Sprintf("%s  %-14s %s (%d elements)", ev.At.Local().Format(time.TimeOnly), ev.Type, ev.PageID, ev.Elements)
	}
	if !pretty {
		return string(line)
	}
	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		return string(line)
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	return string(b)
}
