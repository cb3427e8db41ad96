// Command pingpong demonstrates WaitForMultipleEvents coordinating a host
// and a guest goroutine through a pair of auto-reset events: the host
// publishes a request and waits for the reply event alongside a shutdown
// event, the guest waits for the request event, computes a sum, and signals
// the reply.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/SniperPan/pevents/pevents"
)

type request struct {
	a, b int64
}

type response struct {
	sum int64
}

func main() {
	app := &cli.App{
		Name:  "pingpong",
		Usage: "demonstrate pevents.WaitForMultipleEvents with a host/guest ping-pong",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Value: 10, Usage: "number of requests to exchange"},
			&cli.BoolFlag{Name: "debug", Usage: "print a reminder that pevents debug logging comes only from a pevents_debug build"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	count := c.Int("count")
	if c.Bool("debug") {
		fmt.Println("[host] --debug set; rebuild with -tags pevents_debug to see log output")
	}

	reqReady, err := pevents.NewEvent(false, false)
	if err != nil {
		return err
	}
	defer reqReady.Close()

	respReady, err := pevents.NewEvent(false, false)
	if err != nil {
		return err
	}
	defer respReady.Close()

	shutdown, err := pevents.NewEvent(true, false)
	if err != nil {
		return err
	}
	defer shutdown.Close()

	reqCh := make(chan request, 1)
	respCh := make(chan response, 1)
	done := make(chan struct{})

	go guest(reqReady, respReady, shutdown, reqCh, respCh, done)

	for i := 0; i < count; i++ {
		req := request{a: rand.Int63n(1000), b: rand.Int63n(1000)}
		reqCh <- req
		if err := reqReady.Set(); err != nil {
			return err
		}

		result, fired, err := pevents.WaitAny([]*pevents.Event{respReady, shutdown}, 5*time.Second)
		if err != nil {
			return err
		}
		if result == pevents.Timeout {
			return fmt.Errorf("host: timed out waiting for response %d", i)
		}
		if fired == 1 {
			fmt.Println("[host] shutdown observed early")
			break
		}

		resp := <-respCh
		fmt.Printf("[host] %d + %d = %d\n", req.a, req.b, resp.sum)
	}

	if err := shutdown.Set(); err != nil {
		return err
	}
	<-done
	fmt.Println("[host] done")
	return nil
}

func guest(reqReady, respReady, shutdown *pevents.Event, reqCh chan request, respCh chan response, done chan struct{}) {
	defer close(done)
	events := []*pevents.Event{reqReady, shutdown}

	for {
		result, fired, err := pevents.WaitAny(events, pevents.Infinite)
		if err != nil {
			fmt.Printf("[guest] wait error: %v\n", err)
			return
		}
		if result == pevents.Timeout {
			continue
		}
		if fired == 1 {
			fmt.Println("[guest] shutdown received")
			return
		}

		req := <-reqCh
		respCh <- response{sum: req.a + req.b}
		if err := respReady.Set(); err != nil {
			fmt.Printf("[guest] set error: %v\n", err)
			return
		}
	}
}
