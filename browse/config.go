package main

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
)

// configPath is the directory client certificates, trusted server
// certificate hashes, and browsing history are persisted under.
var configPath = func() string {
	home, _ := os.UserHomeDir()
	return path.Join(home, ".min")
}()

// ClientCertPrefix is a URL prefix a client certificate should be
// presented for, e.g. "gemini://example.com/private/". Certificates
// are stored on disk keyed by the SHA-256 hash of the prefix so the
// prefix itself never has to be filesystem-safe.
type ClientCertPrefix string

func (cc ClientCertPrefix) fileName() string {
	ss := sha256.New()
	ss.Write([]byte(cc))
	fn := hex.EncodeToString(ss.Sum(nil))
	return path.Join(configPath, fn)
}

// Load reads the PEM certificate/key pair stored for cc.
func (cc ClientCertPrefix) Load() (tls.Certificate, error) {
	fn := cc.fileName()
	return tls.LoadX509KeyPair(fn+".cert", fn+".key")
}

// Save persists cert and key for cc, atomically.
func (cc ClientCertPrefix) Save(cert, key []byte) error {
	fn := cc.fileName()
	if err := atomic.WriteFile(fn+".cert", bytes.NewReader(cert)); err != nil {
		return err
	}
	return atomic.WriteFile(fn+".key", bytes.NewReader(key))
}

// Config holds the persisted settings for the browser: the home page,
// display width, history size, trusted server certificate hashes (by
// host) and the client certificate prefixes the user has created.
type Config struct {
	Home               string
	Width              int
	MaximumHistory     int
	HostCertificates   map[string]string
	ClientCertPrefixes map[ClientCertPrefix]struct{}
}

// Save writes the configuration to disk atomically.
func (c *Config) Save() error {
	b := new(bytes.Buffer)
	fmt.Fprintf(b, "home=%v\n", c.Home)
	fmt.Fprintf(b, "width=%v\n", c.Width)
	fmt.Fprintf(b, "maxhistory=%v\n", c.MaximumHistory)
	for prefix := range c.ClientCertPrefixes {
		fmt.Fprintf(b, "clientcert=%v\n", prefix)
	}
	for host, cert := range c.HostCertificates {
		fmt.Fprintf(b, "hostcert/%v=%v\n", host, cert)
	}
	fn := path.Join(configPath, "config.ini")
	os.MkdirAll(path.Dir(fn), os.ModePerm)
	return atomic.WriteFile(fn, b)
}

// NewConfig loads the configuration from disk, falling back to
// defaults for anything not present.
func NewConfig() (c *Config, err error) {
	c = &Config{
		Home:               "gemini://gus.guru",
		Width:              80,
		MaximumHistory:     128,
		HostCertificates:   map[string]string{},
		ClientCertPrefixes: map[ClientCertPrefix]struct{}{},
	}
	lines, err := readLines(path.Join(configPath, "config.ini"))
	if err != nil {
		return
	}
	for _, l := range lines {
		kv := strings.SplitN(l, "=", 2)
		if len(kv) != 2 {
			continue
		}
		k, v := strings.ToLower(strings.TrimSpace(kv[0])), strings.TrimSpace(kv[1])
		switch k {
		case "home":
			c.Home = v
		case "width":
			w, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return c, err
			}
			c.Width = int(w)
		case "maxhistory":
			m, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return c, err
			}
			c.MaximumHistory = int(m)
		case "clientcert":
			c.ClientCertPrefixes[ClientCertPrefix(v)] = struct{}{}
		}
		if strings.HasPrefix(k, "hostcert/") {
			host := strings.TrimPrefix(k, "hostcert/")
			c.HostCertificates[host] = v
		}
	}
	return
}

func readLines(fn string) (lines []string, err error) {
	f, err := os.Open(fn)
	if err != nil {
		if os.IsNotExist(err) {
			err = nil
		}
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	err = scanner.Err()
	return
}
