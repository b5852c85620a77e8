// Copyright (c) 2025 Notewire
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns low-level network failures into messages a
// person at a terminal can act on.
package httperrors

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

type failure int

const (
	failureGeneric failure = iota
	failureTimeout
	failureDNS
	failureRefused
	failureTLS
	failureServer
)

// FormatNetworkError prints a troubleshooting panel for err and returns
// it unchanged; the transport layer already classified it for callers
// that branch on error kinds. doing describes the interrupted action,
// e.g. "signing in".
func FormatNetworkError(err error, doing string) error {
	if err == nil {
		return nil
	}
	host := ""
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		host = dnsErr.Name
	}
	show(classify(err), doing, host, err.Error())
	return err
}

func classify(err error) failure {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return failureTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return failureDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return failureRefused
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return failureTimeout
	case strings.Contains(lower, "connection refused"):
		return failureRefused
	case strings.Contains(lower, "tls"), strings.Contains(lower, "certificate"),
		strings.Contains(lower, "handshake"):
		return failureTLS
	case strings.Contains(lower, "500"), strings.Contains(lower, "502"),
		strings.Contains(lower, "503"), strings.Contains(lower, "504"),
		strings.Contains(lower, "internal server error"),
		strings.Contains(lower, "bad gateway"),
		strings.Contains(lower, "service unavailable"),
		strings.Contains(lower, "gateway timeout"):
		return failureServer
	}
	return failureGeneric
}

func show(f failure, doing, host, details string) {
	switch f {
	case failureTimeout:
		pterm.Printf("⏱️  Connection timeout while %s\n", doing)
		pterm.Println()
		pterm.Println("The server took too long to respond. This could mean:")
		pterm.Println("  • Slow internet connection")
		pterm.Println("  • Server is under heavy load")
		pterm.Println("  • Network firewall is blocking the connection")
		pterm.Println()
		pterm.Println("Please try again in a few moments.")
		pterm.Println()

	case failureDNS:
		target := host
		if target == "" {
			target = "the server address"
		}
		pterm.Printf("🌐 Cannot resolve %s while %s\n", target, doing)
		pterm.Println()
		pterm.Println("Unable to look up the Notewire API host. Please check:")
		pterm.Println("  • Your internet connection is working")
		pterm.Println("  • DNS settings are correct")
		pterm.Println("  • NOTEWIRE_API_URL points at the right host")
		pterm.Println()

	case failureRefused:
		pterm.Printf("🚫 Connection refused while %s\n", doing)
		pterm.Println()
		pterm.Println("The server is not accepting connections. This could mean:")
		pterm.Println("  • The service is temporarily down")
		pterm.Println("  • Firewall is blocking the connection")
		pterm.Println("  • Wrong server address or port")
		pterm.Println()
		pterm.Println("If you are targeting a local API, make sure it is running:")
		pterm.Println("  notewire mockapi")
		pterm.Println()

	case failureTLS:
		pterm.Printf("🔒 Secure connection failed while %s\n", doing)
		pterm.Println()
		pterm.Println("Cannot establish a secure HTTPS connection. This could mean:")
		pterm.Println("  • TLS certificate issue")
		pterm.Println("  • Network proxy interfering with HTTPS")
		pterm.Println("  • System clock is incorrect")
		pterm.Println()

	case failureServer:
		pterm.Printf("⚠️  Server error while %s\n", doing)
		pterm.Println()
		pterm.Println("The Notewire server encountered an internal error.")
		pterm.Println("This is not a problem with your setup.")
		pterm.Println("  • Please try again in a few minutes")
		pterm.Println()

	default:
		pterm.Printf("❌ Cannot reach the Notewire service while %s\n", doing)
		pterm.Println()
		pterm.Println("Please check:")
		pterm.Println("  • Your internet connection")
		pterm.Println("  • Firewall settings that might block HTTPS requests")
		pterm.Println()
		if details != "" {
			if len(details) > 100 {
				details = details[:100] + "..."
			}
			pterm.Debug.Printf("Technical details: %s\n", details)
		}
	}
}
