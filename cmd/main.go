package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/thistlecode/gemini"
	"github.com/thistlecode/gemini/cert"
)

var Version = ""

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "request":
		request(os.Args[2:])
		return
	case "serve":
		serve(os.Args[2:])
		return
	case "version":
		fmt.Println(Version)
		return
	case "--version":
		fmt.Println(Version)
		return
	}
	usage()
}

func usage() {
	fmt.Println(`usage: gemini <command> [parameters]
To see help text, you can run:

  gemini request --help
  gemini serve --help
  gemini version

examples:

  gemini request --insecure --verbose gemini://example.com/pass
  gemini serve --domain=example.com --certFile=server.crt --keyFile=server.key --path=.
  gemini serve --domain=example.com --selfsigned --path=.`)
	os.Exit(1)
}

func request(args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("Shutting down...")
		cancel()
	}()

	cmd := flag.NewFlagSet("request", flag.ExitOnError)
	insecureFlag := cmd.Bool("insecure", false, "Allow any server certificate.")
	certFileFlag := cmd.String("certFile", "", "Path to a client certificate file (must also set keyFile if this is used).")
	keyFileFlag := cmd.String("keyFile", "", "Path to a client key file (must also set certFile if this is used).")
	verboseFlag := cmd.Bool("verbose", false, "Print both headers and body.")
	headersFlag := cmd.Bool("headers", false, "Print only the headers.")
	allowBinaryFlag := cmd.Bool("allowBinary", false, "Set to true to enable printing binary to the console.")
	readTimeoutFlag := cmd.Duration("readTimeout", time.Second*5, "Set the duration, e.g. 1m or 5s.")
	writeTimeoutFlag := cmd.Duration("writeTimeout", time.Second*5, "Set the duration, e.g. 1m or 5s.")
	helpFlag := cmd.Bool("help", false, "Print help and exit.")
	err := cmd.Parse(args)
	if err != nil || *helpFlag {
		cmd.PrintDefaults()
		return
	}
	urlString := strings.Join(cmd.Args(), "")
	if urlString == "" {
		cmd.PrintDefaults()
		return
	}
	u, err := url.Parse(urlString)
	if err != nil {
		fmt.Printf("Failed to parse gemini URL %q: %v\n", urlString, err)
		os.Exit(1)
	}

	dialer := gemini.NewDialer()
	dialer.ReadTimeout = *readTimeoutFlag
	dialer.WriteTimeout = *writeTimeoutFlag
	if *insecureFlag {
		dialer.Insecure = true
	}
	if *certFileFlag != "" {
		keyPair, err := tls.LoadX509KeyPair(*certFileFlag, *keyFileFlag)
		if err != nil {
			fmt.Printf("Failed to parse certFile / keyFile: %v\n", err)
			os.Exit(1)
		}
		dialer.AddClientCertificate("/", keyPair)
	}

	resp, certificates, trusted, err := dialer.RequestURL(ctx, u)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	if !trusted && !*insecureFlag {
		fmt.Println("Unexpected certificates provided by server.")
		for _, c := range certificates {
			fmt.Println(" ", c)
		}
		os.Exit(1)
	}
	if *verboseFlag || *headersFlag {
		fmt.Printf("%v %v\r\n", resp.Code, resp.Meta)
	}
	if !*headersFlag && !isErrorCode(resp.Code) {
		if strings.HasPrefix(resp.Meta, "text/") {
			s := bufio.NewScanner(resp.Body)
			for s.Scan() {
				fmt.Println(s.Text())
			}
			if s.Err() != nil {
				fmt.Printf("Error reading response body: %v\n", s.Err())
				os.Exit(1)
			}
			defer resp.Body.Close()
		} else if *allowBinaryFlag {
			_, err := io.Copy(os.Stdout, resp.Body)
			if err != nil {
				fmt.Printf("Error reading binary response body: %v\n", err)
				os.Exit(1)
			}
			defer resp.Body.Close()
		} else {
			fmt.Println("Binary output skipped, set allowBinary to allow.")
			os.Exit(1)
		}
	}
	if isErrorCode(resp.Code) {
		os.Exit(1)
	}
}

func isErrorCode(code gemini.Code) bool {
	return code >= 40 && code <= 59
}

func newServerConfig() serverConfig {
	return serverConfig{
		Domain:       make(map[string]domainConfig),
		Port:         defaultPort,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
}

type serverConfig struct {
	Domain       map[string]domainConfig
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type domainConfig struct {
	Path         string
	CertFilePath string
	KeyFilePath  string
}

func (dc domainConfig) IsValid(name string) error {
	var errs []error
	if dc.Path == "" {
		errs = append(errs, fmt.Errorf("%s: no path configured", name))
	}
	if dc.CertFilePath == "" {
		errs = append(errs, fmt.Errorf("%s: no cert file configured", name))
	}
	if dc.KeyFilePath == "" {
		errs = append(errs, fmt.Errorf("%s: no key file configured", name))
	}
	return errors.Join(errs...)
}

var errNoDomainsConfigured = errors.New("no domains configured")

func (sc serverConfig) IsValid() error {
	var errs []error
	if len(sc.Domain) == 0 {
		return errNoDomainsConfigured
	}
	for name, dc := range sc.Domain {
		errs = append(errs, dc.IsValid(name))
	}
	return errors.Join(errs...)
}

func loadConfigFile(conf io.Reader) (serverConfig serverConfig, err error) {
	_, err = toml.NewDecoder(conf).Decode(&serverConfig)
	if err != nil {
		return
	}
	if serverConfig.Port == 0 {
		serverConfig.Port = defaultPort
	}
	if serverConfig.ReadTimeout == 0 {
		serverConfig.ReadTimeout = defaultReadTimeout
	}
	if serverConfig.WriteTimeout == 0 {
		serverConfig.WriteTimeout = defaultWriteTimeout
	}
	return serverConfig, serverConfig.IsValid()
}

var (
	defaultReadTimeout  = time.Second * 5
	defaultWriteTimeout = time.Second * 10
	defaultPort         = 1965
	defaultPath         = "."
)

// writeSelfSignedCert generates a throwaway certificate for domain via
// cert.Generate and writes it out as a PEM cert/key pair in the OS
// temp directory, returning the paths UseCertificateFile/
// UsePrivateKeyFile expect.
func writeSelfSignedCert(domain string) (certFile, keyFile string, err error) {
	certPEM, keyPEM, err := cert.Generate("gemini-selfsigned", domain, domain, 365*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	dir, err := os.MkdirTemp("", "gemini-selfsigned")
	if err != nil {
		return "", "", err
	}
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	if err = os.WriteFile(certFile, certPEM, 0o600); err != nil {
		return "", "", err
	}
	if err = os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return "", "", err
	}
	return certFile, keyFile, nil
}

func serve(args []string) {
	cmd := flag.NewFlagSet("serve", flag.ExitOnError)
	certFileFlag := cmd.String("certFile", "", "(required) Path to a server certificate file (must also set keyFile if this is used).")
	keyFileFlag := cmd.String("keyFile", "", "(required) Path to a server key file (must also set certFile if this is used).")
	domainFlag := cmd.String("domain", "localhost", "The domain to listen on.")
	pathFlag := cmd.String("path", defaultPath, "Path containing content.")
	portFlag := cmd.Int("port", defaultPort, "Port to listen on.")
	readTimeoutFlag := cmd.Duration("readTimeout", defaultReadTimeout, "Set the duration, e.g. 1m or 5s.")
	writeTimeoutFlag := cmd.Duration("writeTimeout", defaultWriteTimeout, "Set the duration, e.g. 1m or 5s.")
	configPathFlag := cmd.String("config", "", "Path to a TOML config file.")
	selfSignedFlag := cmd.Bool("selfsigned", false, "Generate a throwaway self-signed certificate instead of requiring certFile/keyFile.")
	helpFlag := cmd.Bool("help", false, "Print help and exit.")

	err := cmd.Parse(args)
	if err != nil || *helpFlag {
		cmd.PrintDefaults()
		return
	}

	config := newServerConfig()
	if *configPathFlag != "" {
		r, err := os.Open(*configPathFlag)
		if err != nil {
			fmt.Printf("error: invalid config path: %v\n", err)
			os.Exit(1)
		}
		config, err = loadConfigFile(r)
		if err != nil {
			fmt.Printf("error: invalid config: %v\n", err)
			os.Exit(1)
		}
	} else if *selfSignedFlag {
		certFile, keyFile, err := writeSelfSignedCert(*domainFlag)
		if err != nil {
			fmt.Printf("error: failed to generate self-signed certificate: %v\n", err)
			os.Exit(1)
		}
		config.Port = *portFlag
		config.ReadTimeout = *readTimeoutFlag
		config.WriteTimeout = *writeTimeoutFlag
		config.Domain[*domainFlag] = domainConfig{
			Path:         *pathFlag,
			CertFilePath: certFile,
			KeyFilePath:  keyFile,
		}
	} else {
		if *certFileFlag == "" || *keyFileFlag == "" {
			fmt.Println("error: require certFile and keyFile flags to create server (or pass -selfsigned)")
			fmt.Println()
			cmd.PrintDefaults()
			os.Exit(1)
		}
		config.Port = *portFlag
		config.ReadTimeout = *readTimeoutFlag
		config.WriteTimeout = *writeTimeoutFlag
		config.Domain[*domainFlag] = domainConfig{
			Path:         *pathFlag,
			CertFilePath: *certFileFlag,
			KeyFilePath:  *keyFileFlag,
		}
	}

	domains := gemini.NewDomainHandler()
	port := uint16(config.Port)
	srv := gemini.NewServer(nil, port, domains)
	srv.ReadTimeout = config.ReadTimeout
	srv.WriteTimeout = config.WriteTimeout

	for domain, dc := range config.Domain {
		domains.AddDomain(domain, gemini.FileSystemHandler(gemini.Dir(dc.Path)))
		srv.UseCertificateForHost(domain, dc.CertFilePath, dc.KeyFilePath)
	}
	// Also register the default certificate, so a client that skips SNI
	// (disallowed by the Gemini spec, but not unheard of) still gets served.
	for _, dc := range config.Domain {
		srv.UseCertificateFile(dc.CertFilePath)
		srv.UsePrivateKeyFile(dc.KeyFilePath)
		break
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
		cancel()
	}()

	if err := srv.Start(ctx); err != nil && !errors.Is(err, gemini.ErrServerClosed) {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
