package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tagbridge-protocol/tagbridge-go/pkg/service"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/space"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/subscription"
	"github.com/tagbridge-protocol/tagbridge-go/pkg/tag"
)

// console is the interactive bridge shell.
type console struct {
	svc    *service.BridgeService
	cancel context.CancelFunc
	rl     *readline.Instance
}

func newConsole(svc *service.BridgeService, cancel context.CancelFunc) (*console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bridge> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	c := &console{svc: svc, cancel: cancel, rl: rl}

	// Notifications print above the prompt; readline repaints it.
	svc.Subscriptions().OnNotification(c.printNotification)

	return c, nil
}

// Run reads and dispatches commands until quit, EOF or a double ^C.
func (c *console) Run(ctx context.Context) {
	defer c.rl.Close()

	fmt.Fprintln(c.rl.Stdout(), "tagbridge interactive console. Type 'help' for commands.")

	for {
		line, err := c.rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help", "?":
			c.printHelp()
		case "status":
			c.printStatus()
		case "tree":
			c.printTree()
		case "read":
			c.cmdRead(ctx, fields[1:])
		case "write":
			c.cmdWrite(ctx, fields[1:])
		case "watch":
			c.cmdWatch(fields[1:])
		case "unwatch":
			c.cmdUnwatch(fields[1:])
		case "subs":
			c.printSubs()
		case "quit", "exit":
			c.cancel()
			return
		default:
			fmt.Fprintf(c.rl.Stderr(), "unknown command %q, try 'help'\n", fields[0])
		}
	}
}

func (c *console) printHelp() {
	fmt.Fprint(c.rl.Stdout(), `Commands:
  status                 Show bridge state and address-space size
  tree                   Print the address space
  read <path>            Read a tag through the bridge (live round-trip)
  write <path> <value>   Write a tag through the bridge
  watch [path ...]       Subscribe to paths (no paths = all tags)
  unwatch <id>           Cancel a subscription
  subs                   List active subscriptions
  quit                   Stop the bridge and exit
`)
}

func (c *console) printStatus() {
	w := c.rl.Stdout()
	fmt.Fprintf(w, "service:   %s (instance %s)\n", c.svc.State(), c.svc.InstanceID())
	fmt.Fprintf(w, "nodes:     %s\n", c.svc.Nodes().State())
	if tree := c.svc.Nodes().Tree(); tree != nil {
		fmt.Fprintf(w, "space:     %d folders, %d variables\n",
			tree.FolderCount(), tree.VariableCount())
	}
	fmt.Fprintf(w, "subs:      %d\n", c.svc.Subscriptions().Count())
}

// printTree renders the address space as an indented listing, variables
// sorted by path so folder members group together.
func (c *console) printTree() {
	tree := c.svc.Nodes().Tree()
	if tree == nil {
		fmt.Fprintln(c.rl.Stderr(), "no address space")
		return
	}

	w := c.rl.Stdout()
	fmt.Fprintf(w, "%s [%s]\n", tree.Root().BrowseName(), tree.Root().NodeID())

	vars := make([]*space.VariableNode, len(tree.Variables()))
	copy(vars, tree.Variables())
	sort.Slice(vars, func(i, j int) bool {
		return vars[i].Path().Fold() < vars[j].Path().Fold()
	})

	for _, v := range vars {
		depth := len(v.Path().Segments())
		indent := strings.Repeat("  ", depth)
		value, _, quality := v.Value()
		mode := "rw"
		if v.ReadOnly() {
			mode = "ro"
		}
		fmt.Fprintf(w, "%s%s [%s] %s %s = %v (%s)\n",
			indent, v.BrowseName(), v.NodeID(), v.DataType(), mode, value, quality)
	}
}

func (c *console) cmdRead(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stderr(), "usage: read <path>")
		return
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	value, ts, quality, err := c.svc.Nodes().Bridge().ReadThrough(readCtx, tag.Path(args[0]))
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "read: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "%v (%s, %s)\n", value, quality, ts.Format(time.RFC3339))
}

func (c *console) cmdWrite(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(c.rl.Stderr(), "usage: write <path> <value>")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.svc.Nodes().Bridge().WriteThrough(writeCtx, tag.Path(args[0]), parseValue(args[1]))
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "write: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "ok")
}

func (c *console) cmdWatch(args []string) {
	paths := make([]tag.Path, 0, len(args))
	for _, a := range args {
		paths = append(paths, tag.Path(a))
	}

	// Prime the subscription with the cached node values.
	current := make(map[string]any)
	if tree := c.svc.Nodes().Tree(); tree != nil {
		for _, v := range tree.Variables() {
			value, _, quality := v.Value()
			if quality == space.QualityGood {
				current[v.Path().String()] = value
			}
		}
	}

	id, err := c.svc.Subscriptions().Subscribe(paths, time.Second, 30*time.Second, current)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "watch: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "subscription %d created\n", id)
}

func (c *console) cmdUnwatch(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(c.rl.Stderr(), "usage: unwatch <id>")
		return
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(c.rl.Stderr(), "unwatch: bad id %q\n", args[0])
		return
	}
	if err := c.svc.Subscriptions().Unsubscribe(uint32(id)); err != nil {
		fmt.Fprintf(c.rl.Stderr(), "unwatch: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "subscription %d cancelled\n", id)
}

func (c *console) printSubs() {
	fmt.Fprintf(c.rl.Stdout(), "%d active subscription(s)\n", c.svc.Subscriptions().Count())
}

func (c *console) printNotification(n subscription.Notification) {
	w := c.rl.Stdout()
	kind := "change"
	switch {
	case n.IsPriming:
		kind = "priming"
	case n.IsHeartbeat:
		kind = "heartbeat"
	}

	if len(n.Values) == 0 {
		fmt.Fprintf(w, "[sub %d] %s\n", n.SubscriptionID, kind)
		return
	}

	paths := make([]string, 0, len(n.Values))
	for p := range n.Values {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		fmt.Fprintf(w, "[sub %d] %s %s = %v\n", n.SubscriptionID, kind, p, n.Values[p])
	}
}

// parseValue interprets a command argument as bool, integer, float or
// string, in that order.
func parseValue(s string) any {
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
