package main

import (
	"bufio"
	"flag"
	"log"
	"os"

	"github.com/ecc1/nrf24l01"
)

func main() {
	configPath := flag.String("config", "", "configuration file (JSON)")
	ptx := flag.Bool("ptx", false, "force transmitter role")
	prx := flag.Bool("prx", false, "force receiver role")
	flag.Parse()

	config := nrf24l01.DefaultConfig()
	if *configPath != "" {
		var err error
		config, err = nrf24l01.LoadConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *ptx {
		config.Ptx = true
	}
	if *prx {
		config.Ptx = false
	}

	timer := nrf24l01.NewSystemTimer()
	manager := nrf24l01.NewManager(openRadio, config)
	console := nrf24l01.NewConsole(manager, os.Stdout)
	manager.Start()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	lastMs := timer.ReadMillis()
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			console.ProcessLine(line)
		default:
		}

		manager.Poll()

		now := timer.ReadMillis()
		for lastMs != now {
			manager.PollMillisecond()
			lastMs++
		}
	}
}

func openRadio(options nrf24l01.Options) nrf24l01.Transceiver {
	r := nrf24l01.Open(options)
	if r.Error() != nil {
		log.Fatal(r.Error())
	}
	return r
}
