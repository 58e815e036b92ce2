package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"stepbank/host/mcu"
	"stepbank/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	verbose = flag.Bool("verbose", false, "Echo raw command lines")
)

func main() {
	flag.Parse()

	fmt.Println("Stepbank Host - shift-register stepper bank console")

	fmt.Printf("Connecting to %s...\n", *device)
	bank, err := mcu.Connect(*device, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer bank.Close()

	if err := bank.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: firmware not responding: %v\n", err)
		os.Exit(1)
	}
	if n, err := bank.Count(); err == nil {
		fmt.Printf("Connected: bank of %d steppers\n", n)
	}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return
		case "help", "?":
			printHelp()
			continue
		}

		// Everything else is a protocol command; parse locally first so
		// typos are reported without a round trip.
		cmd, err := protocol.Parse(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if *verbose {
			fmt.Printf("-> %s\n", protocol.Format(cmd))
		}
		detail, err := bank.Do(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if detail != "" {
			fmt.Println(detail)
		} else {
			fmt.Println("ok")
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  ping                 - Check that the firmware answers")
	fmt.Println("  count                - Report the number of motors")
	fmt.Println("  move <index> <steps> - Step one motor by a signed amount")
	fmt.Println("  movel <d0> <d1> ...  - Coordinated move, one delta per motor")
	fmt.Println("  home                 - Return every motor to position zero")
	fmt.Println("  rpm <n>              - Set speed in revolutions per minute")
	fmt.Println("  rads <n>             - Set speed in radians per second")
	fmt.Println("  enable / disable     - Drive the output-enable line")
	fmt.Println("  clear                - Pulse the master-reclear line")
	fmt.Println("  resize <n>           - Reallocate the bank for n motors")
	fmt.Println("  quit/exit/q          - Exit the program")
	fmt.Println()
}
