// Command x30ctl is the interactive client for the X30 inspection
// robot (spec §6.1): connect to <host> <port>, then read commands from
// stdin until quit or EOF.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/tailu123/x30ctl"
	"github.com/tailu123/x30ctl/config"
	"github.com/tailu123/x30ctl/eventbus"
	"github.com/tailu123/x30ctl/metrics"
	"github.com/tailu123/x30ctl/queue"
	"github.com/tailu123/x30ctl/transport"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	host := flag.Arg(0)
	port, err := strconv.Atoi(flag.Arg(1))
	if err != nil {
		log.Printf("x30ctl: invalid port %q: %v", flag.Arg(1), err)
		os.Exit(1)
	}

	os.Exit(run(host, port))
}

func run(host string, port int) int {
	bus := eventbus.Default()
	q := queue.New()
	mtr := metrics.New()
	tr := transport.New(q, bus, transport.WithMetrics(mtr))

	sess := x30ctl.New(q, tr,
		x30ctl.WithBus(bus),
		x30ctl.WithMetrics(mtr),
		x30ctl.WithWaypoints(config.LoadWaypoints(config.DefaultPath())),
	)

	eventbus.Subscribe(bus, logNavigationTask)
	eventbus.Subscribe(bus, logQueryStatus)
	eventbus.Subscribe(bus, logRealTimeStatus)
	eventbus.Subscribe(bus, logNetworkError)
	eventbus.Subscribe(bus, logError)

	if err := sess.Initialize(host, port); err != nil {
		log.Printf("x30ctl: initialize: %v", err)
		return 1
	}
	defer sess.Shutdown()

	return repl(sess)
}

func repl(sess *x30ctl.Session) int {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "help":
			printHelp()
		case "quit":
			return 0
		default:
			sess.HandleCommand(line)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("x30ctl: stdin: %v", err)
		return 1
	}
	return 0
}

func logNavigationTask(e eventbus.NavigationTask) {
	fmt.Printf("navigation task %s\n", e.Status)
}

func logQueryStatus(e eventbus.QueryStatus) {
	fmt.Printf("status: value=%d status=%v errorCode=%v\n", e.Value, e.Status, e.ErrorCode)
}

func logRealTimeStatus(e eventbus.GetRealTimeStatus) {
	fmt.Printf("position: x=%.2f y=%.2f z=%.2f odom=%.2f location=%v\n", e.PosX, e.PosY, e.PosZ, e.SumOdom, e.Location)
}

func logNetworkError(e eventbus.NetworkError) {
	fmt.Printf("network error: %s\n", e.Message)
}

func logError(e eventbus.Error) {
	fmt.Printf("error (%d): %s\n", e.Code, e.Message)
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  start   begin a navigation task with the preloaded waypoints")
	fmt.Println("  cancel  request cancellation of the active task")
	fmt.Println("  status  request an immediate status response")
	fmt.Println("  help    print this command list")
	fmt.Println("  quit    exit after clean shutdown")
}

func printUsage() {
	fmt.Println("x30ctl - X30 inspection robot controller")
	fmt.Println("Usage:")
	fmt.Println("  x30ctl <host> <port>")
}
