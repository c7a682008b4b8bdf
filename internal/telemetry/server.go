// Package telemetry exposes the live harness variables over OPC UA so a
// bench operator can watch a run from any OPC UA client.
package telemetry

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/awcullen/opcua/server"
	"github.com/awcullen/opcua/ua"
	"github.com/rs/zerolog/log"
)

const (
	pkiDir   = "./pki"
	certFile = "./pki/server.crt"
	keyFile  = "./pki/server.key"

	namespace uint16 = 2
	folder           = "Harness"
)

// Snapshot is one tick's worth of published harness state.
type Snapshot struct {
	SubDepth       float64
	SeafloorDepth  float64
	TrueRange      float64
	CorruptedRange float64
	TestState      string
	VehicleMode    string
	Armed          bool
	Elapsed        float64
	MaxDeviation   float64
}

// node names within the harness folder
var nodeNames = []struct {
	name string
	desc string
	init interface{}
}{
	{"SubDepth", "Vehicle depth below the surface (m)", 0.0},
	{"SeafloorDepth", "Synthetic seafloor depth below the surface (m)", 0.0},
	{"TrueRange", "Uncorrupted range to the seafloor (m)", 0.0},
	{"CorruptedRange", "Range after noise, outliers and delay (m)", 0.0},
	{"TestState", "Active orchestrator state", "init_sensor"},
	{"VehicleMode", "Reported vehicle control mode", "manual"},
	{"Armed", "Vehicle armed flag", false},
	{"Elapsed", "Elapsed test time (s)", 0.0},
	{"MaxDeviation", "Largest tracked range deviation (m)", 0.0},
}

// Server wraps the OPC UA server and its harness variable nodes. When the
// OPC UA stack cannot come up the server degrades to a no-op so the test run
// itself is never blocked on telemetry.
type Server struct {
	srv  *server.Server
	port int
	name string

	mu    sync.Mutex
	nodes map[string]*server.VariableNode
}

// NewServer creates a telemetry server for the given port.
func NewServer(port int, harnessName string) *Server {
	return &Server{
		port:  port,
		name:  harnessName,
		nodes: make(map[string]*server.VariableNode),
	}
}

// Start brings the OPC UA endpoint up and registers the harness nodes.
func (s *Server) Start(ctx context.Context) error {
	endpoint := fmt.Sprintf("opc.tcp://0.0.0.0:%d", s.port)

	if err := ensurePKI(s.name); err != nil {
		log.Warn().Err(err).Msg("PKI setup failed, telemetry disabled")
		return nil
	}

	srv, err := server.New(
		ua.ApplicationDescription{
			ApplicationURI:  "urn:rangehold-harness",
			ProductURI:      "urn:rangehold-harness",
			ApplicationName: ua.LocalizedText{Text: s.name, Locale: "en"},
			ApplicationType: ua.ApplicationTypeServer,
		},
		certFile,
		keyFile,
		endpoint,
		server.WithAnonymousIdentity(true),
		server.WithSecurityPolicyNone(true),
		server.WithInsecureSkipVerify(),
	)
	if err != nil {
		log.Warn().Err(err).Msg("OPC UA server creation failed, telemetry disabled")
		return nil
	}
	s.srv = srv

	s.createNodes()

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Error().Err(err).Msg("OPC UA server error")
		}
	}()

	log.Info().Int("port", s.port).Str("endpoint", endpoint).Msg("telemetry server started")
	return nil
}

// Stop closes the OPC UA endpoint.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv != nil {
		return s.srv.Close()
	}
	return nil
}

func (s *Server) createNodes() {
	nm := s.srv.NamespaceManager()

	folderNode := server.NewObjectNode(
		s.srv,
		ua.NodeIDString{NamespaceIndex: namespace, ID: folder},
		ua.QualifiedName{NamespaceIndex: namespace, Name: folder},
		ua.LocalizedText{Text: folder},
		ua.LocalizedText{Text: "Depth-hold test harness live values"},
		nil,
		[]ua.Reference{
			{
				ReferenceTypeID: ua.ReferenceTypeIDOrganizes,
				IsInverse:       true,
				TargetID:        ua.ExpandedNodeID{NodeID: ua.ObjectIDObjectsFolder},
			},
		},
		0,
	)
	nm.AddNode(folderNode)

	for _, def := range nodeNames {
		dataType := ua.DataTypeIDDouble
		switch def.init.(type) {
		case string:
			dataType = ua.DataTypeIDString
		case bool:
			dataType = ua.DataTypeIDBoolean
		}
		varNode := server.NewVariableNode(
			s.srv,
			ua.NodeIDString{NamespaceIndex: namespace, ID: folder + "." + def.name},
			ua.QualifiedName{NamespaceIndex: namespace, Name: def.name},
			ua.LocalizedText{Text: def.name},
			ua.LocalizedText{Text: def.desc},
			nil,
			[]ua.Reference{
				{
					ReferenceTypeID: ua.ReferenceTypeIDHasComponent,
					IsInverse:       true,
					TargetID:        ua.ExpandedNodeID{NodeID: ua.NodeIDString{NamespaceIndex: namespace, ID: folder}},
				},
			},
			ua.NewDataValue(def.init, 0, time.Now().UTC(), 0, time.Now().UTC(), 0),
			dataType,
			ua.ValueRankScalar,
			[]uint32{},
			ua.AccessLevelsCurrentRead,
			250.0,
			false,
			nil,
		)
		nm.AddNode(varNode)
		s.nodes[def.name] = varNode
	}
}

// Publish pushes one snapshot into the variable nodes. A no-op when the
// server never came up.
func (s *Server) Publish(snap Snapshot) {
	if s.srv == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	set := func(name string, value interface{}) {
		if node, ok := s.nodes[name]; ok {
			node.SetValue(ua.NewDataValue(value, 0, now, 0, now, 0))
		}
	}
	set("SubDepth", snap.SubDepth)
	set("SeafloorDepth", snap.SeafloorDepth)
	set("TrueRange", snap.TrueRange)
	set("CorruptedRange", snap.CorruptedRange)
	set("TestState", snap.TestState)
	set("VehicleMode", snap.VehicleMode)
	set("Armed", snap.Armed)
	set("Elapsed", snap.Elapsed)
	set("MaxDeviation", snap.MaxDeviation)
}

// ensurePKI creates the PKI directory and a self-signed certificate pair if
// none exists yet.
func ensurePKI(appName string) error {
	if _, err := os.Stat(certFile); err == nil {
		return nil
	}
	if err := os.MkdirAll(pkiDir, 0755); err != nil {
		return fmt.Errorf("create PKI directory: %w", err)
	}
	return createSelfSignedCert(appName, certFile, keyFile)
}

func createSelfSignedCert(appName, certPath, keyPath string) error {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName:   appName,
			Organization: []string{"RangeHold Harness"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", appName},
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("0.0.0.0")},
		URIs: []*url.URL{
			{Scheme: "urn", Opaque: "rangehold-harness"},
		},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}

	certOut, err := os.Create(certPath)
	if err != nil {
		return fmt.Errorf("create cert file: %w", err)
	}
	defer certOut.Close()
	if err := pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return fmt.Errorf("encode certificate: %w", err)
	}

	keyOut, err := os.Create(keyPath)
	if err != nil {
		return fmt.Errorf("create key file: %w", err)
	}
	defer keyOut.Close()
	keyDER := x509.MarshalPKCS1PrivateKey(privateKey)
	if err := pem.Encode(keyOut, &pem.Block{Type: "RSA PRIVATE KEY", Bytes: keyDER}); err != nil {
		return fmt.Errorf("encode private key: %w", err)
	}

	log.Info().Str("certPath", certPath).Msg("self-signed certificates generated")
	return nil
}
