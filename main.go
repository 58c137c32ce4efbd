package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/atrniv/gregor/producer"
	"github.com/atrniv/gregor/transport"
	"github.com/atrniv/gregor/util"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func main() {
	bootstrap := os.Getenv("GREGOR_BOOTSTRAP")
	if bootstrap == "" {
		bootstrap = "localhost:9092"
	}
	topic := os.Getenv("GREGOR_TOPIC")
	if topic == "" {
		topic = "gregor-demo"
	}

	metadata, err := transport.NewMetadataClient(bootstrap, "gregor-demo")
	if err != nil {
		panic(err)
	}
	defer metadata.Close()

	apiVersion, err := metadata.NegotiateProduceVersion()
	if err != nil {
		panic(err)
	}

	registry := producer.NewRegistry()
	p, err := registry.Create("demo", producer.Config{
		APIVersion: apiVersion,
		BatchNum:   10,
		FlushTime:  100 * time.Millisecond,
	}, metadata)
	if err != nil {
		panic(err)
	}

	var wg sync.WaitGroup
	results := make([]producer.Result, 20)
	for i := 0; i < len(results); i++ {
		i := i
		wg.Add(1)
		err := p.Enqueue(topic, nil, []byte(fmt.Sprintf("message %d", i)), func(result producer.Result) {
			results[i] = result
			wg.Done()
		})
		if err != nil {
			panic(err)
		}
	}
	wg.Wait()

	if err := registry.Close(); err != nil {
		panic(err)
	}
	util.Debug("PRODUCE RESULTS", results)
}
