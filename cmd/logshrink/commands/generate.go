package commands

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/spf13/cobra"
)

var (
	generateAddr     string
	generateProtocol string
	generateCount    int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Emit synthetic RFC 5424 syslog lines at a target address",
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateAddr, "addr", "127.0.0.1:5140", "target listener address")
	generateCmd.Flags().StringVar(&generateProtocol, "protocol", "udp", "transport: udp or tcp")
	generateCmd.Flags().IntVar(&generateCount, "count", 20, "number of messages to emit")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generateProtocol != "udp" && generateProtocol != "tcp" {
		return errUserError("invalid --protocol %q (want udp or tcp)", generateProtocol)
	}

	switch generateProtocol {
	case "udp":
		conn, err := net.Dial("udp", generateAddr)
		if err != nil {
			return errIOOrFormat("dialing %s: %v", generateAddr, err)
		}
		defer conn.Close()
		for i := 0; i < generateCount; i++ {
			if _, err := conn.Write([]byte(syntheticLine(i))); err != nil {
				return errIOOrFormat("writing udp datagram: %v", err)
			}
		}
	case "tcp":
		conn, err := net.Dial("tcp", generateAddr)
		if err != nil {
			return errIOOrFormat("dialing %s: %v", generateAddr, err)
		}
		defer conn.Close()
		for i := 0; i < generateCount; i++ {
			if _, err := conn.Write([]byte(syntheticLine(i) + "\n")); err != nil {
				return errIOOrFormat("writing tcp stream: %v", err)
			}
		}
	}

	slog.Info("generated synthetic messages", "count", generateCount, "addr", generateAddr, "protocol", generateProtocol)
	return nil
}

func syntheticLine(i int) string {
	return fmt.Sprintf(
		"<34>1 2023-10-11T22:14:15.003Z myhost myapp 1234 ID47 [exampleSDID@32473] User user%d failed login from IP 192.168.1.%d",
		i, i%256,
	)
}
