// Command kvs-client is a thin TCP client for kvs-server, speaking the
// protocol described by internal/protocol directly over a net.Conn. It
// also supplements the get/set/rm one-shot commands with an interactive
// repl subcommand for exploring a running store.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"github.com/iamNilotpal/ignite/internal/protocol"
	"github.com/iamNilotpal/ignite/pkg/options"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	// The flag package stops at the first positional argument, so an -addr
	// given after KEY (or VALUE) is moved to the front along with its value.
	for i, a := range args {
		if a == "-addr" || a == "--addr" || strings.HasPrefix(a, "-addr=") || strings.HasPrefix(a, "--addr=") {
			args = append(append([]string{}, args[i:]...), args[:i]...)
			break
		}
	}

	var err error
	switch cmd {
	case "get":
		err = runGet(args)
	case "set":
		err = runSet(args)
	case "rm":
		err = runRemove(args)
	case "repl":
		err = runRepl(args)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: kvs-client <get|set|rm|repl> ...")
}

func runGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	addr := fs.String("addr", options.DefaultListenAddress, "server address")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: kvs-client get KEY [--addr IP:PORT]")
	}

	conn, err := connect(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := roundTrip(conn, protocol.GetRequest(fs.Arg(0)))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("%s", resp.Err)
	}
	if resp.Value == nil {
		fmt.Println("Key not found")
		return nil
	}
	fmt.Println(*resp.Value)
	return nil
}

func runSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	addr := fs.String("addr", options.DefaultListenAddress, "server address")
	fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: kvs-client set KEY VALUE [--addr IP:PORT]")
	}

	conn, err := connect(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := roundTrip(conn, protocol.SetRequest(fs.Arg(0), fs.Arg(1)))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("%s", resp.Err)
	}
	return nil
}

func runRemove(args []string) error {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	addr := fs.String("addr", options.DefaultListenAddress, "server address")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: kvs-client rm KEY [--addr IP:PORT]")
	}

	conn, err := connect(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	resp, err := roundTrip(conn, protocol.RemoveRequest(fs.Arg(0)))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("%s", resp.Err)
	}
	return nil
}

// runRepl opens one connection and reads get/set/rm commands interactively
// until the user exits, reusing the same connection for every command so
// the round trips exercise the server's per-connection decode loop rather
// than reconnecting each time.
func runRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	addr := fs.String("addr", options.DefaultListenAddress, "server address")
	fs.Parse(args)

	conn, err := connect(*addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	rl, err := readline.New(fmt.Sprintf("kvs(%s)> ", *addr))
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var req protocol.Request
		switch strings.ToLower(fields[0]) {
		case "get":
			if len(fields) != 2 {
				fmt.Fprintln(os.Stderr, "usage: get KEY")
				continue
			}
			req = protocol.GetRequest(fields[1])
		case "set":
			if len(fields) != 3 {
				fmt.Fprintln(os.Stderr, "usage: set KEY VALUE")
				continue
			}
			req = protocol.SetRequest(fields[1], fields[2])
		case "rm":
			if len(fields) != 2 {
				fmt.Fprintln(os.Stderr, "usage: rm KEY")
				continue
			}
			req = protocol.RemoveRequest(fields[1])
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintln(os.Stderr, "unrecognized command; try get/set/rm/exit")
			continue
		}

		resp, err := roundTrip(conn, req)
		if err != nil {
			return err
		}
		if !resp.Ok {
			fmt.Fprintln(os.Stderr, resp.Err)
		} else if resp.Value != nil {
			fmt.Println(*resp.Value)
		}
	}
}

func connect(addr string) (net.Conn, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return conn, nil
}

func roundTrip(conn net.Conn, req protocol.Request) (protocol.Response, error) {
	if err := protocol.NewEncoder(conn).EncodeRequest(req); err != nil {
		return protocol.Response{}, err
	}
	return protocol.NewDecoder(bufio.NewReader(conn)).DecodeResponse()
}
