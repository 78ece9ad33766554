package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPrivateIP(t *testing.T) {
	private := []string{
		"127.0.0.1",
		"::1",
		"10.0.0.5",
		"172.16.4.1",
		"192.168.1.10",
		"169.254.0.1",
		"0.0.0.0",
		"not-an-ip",
		"",
	}
	for _, ip := range private {
		assert.True(t, isPrivateIP(ip), "expected %q to be private", ip)
	}

	public := []string{
		"8.8.8.8",
		"203.0.113.1",
		"2001:4860:4860::8888",
	}
	for _, ip := range public {
		assert.False(t, isPrivateIP(ip), "expected %q to be public", ip)
	}
}
