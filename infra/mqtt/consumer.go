// Package mqtt consumes telemetry and prediction messages published by the
// out-of-band producer pipeline. Producers write JSON to
// fleet/{vehicle_id}/telemetry and fleet/{vehicle_id}/prediction; the
// consumer validates, persists and lets prediction ingest trigger status
// recomputation.
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/monitoring"
	"github.com/opfleet/fleethealth/infra/logger"
)

const (
	telemetryTopic  = "fleet/+/telemetry"
	predictionTopic = "fleet/+/prediction"
)

// Config defines the connection parameters for the Paho MQTT consumer.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	TLSConfig  *tls.Config     `json:"-"`
}

// TelemetryRecorder is the slice of the telemetry service the consumer
// needs.
type TelemetryRecorder interface {
	Record(ctx context.Context, t model.Telemetry) (model.Telemetry, error)
}

// PredictionRecorder is the slice of the prediction recorder the consumer
// needs.
type PredictionRecorder interface {
	Record(ctx context.Context, p model.Prediction) (model.Prediction, error)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Consumer bridges broker messages into the ingest services.
type Consumer struct {
	cli         pahoClient
	telemetry   TelemetryRecorder
	predictions PredictionRecorder
	qos         map[string]byte
	log         logger.Logger
}

// NewConsumer connects to the broker and subscribes to the ingest topics.
func NewConsumer(cfg Config, tel TelemetryRecorder, pred PredictionRecorder) (*Consumer, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_consumer")
	c := &Consumer{telemetry: tel, predictions: pred, qos: cfg.QoS, log: log}

	opts.OnConnect = func(pc paho.Client) {
		log.Infof("MQTT connected")
		if token := pc.Subscribe(telemetryTopic, c.topicQoS("telemetry"), c.onTelemetry); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", telemetryTopic, token.Error())
		}
		if token := pc.Subscribe(predictionTopic, c.topicQoS("prediction"), c.onPrediction); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", predictionTopic, token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (c *Consumer) topicQoS(name string) byte {
	if q, ok := c.qos[name]; ok {
		return q
	}
	return 0
}

// vehicleIDFromTopic extracts the id segment of fleet/{id}/{kind}.
func vehicleIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "fleet" {
		return ""
	}
	return parts[1]
}

func (c *Consumer) onTelemetry(_ paho.Client, msg paho.Message) {
	vehicleID := vehicleIDFromTopic(msg.Topic())
	if vehicleID == "" {
		c.log.Errorf("telemetry on unexpected topic %s", msg.Topic())
		return
	}
	var t model.Telemetry
	if err := json.Unmarshal(msg.Payload(), &t); err != nil {
		c.log.Errorf("decode telemetry for vehicle %s: %v", vehicleID, err)
		return
	}
	t.VehicleID = vehicleID
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.telemetry.Record(ctx, t); err != nil {
		c.log.Errorf("record telemetry for vehicle %s: %v", vehicleID, err)
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "vehicle_id": vehicleID})
	}
}

func (c *Consumer) onPrediction(_ paho.Client, msg paho.Message) {
	vehicleID := vehicleIDFromTopic(msg.Topic())
	if vehicleID == "" {
		c.log.Errorf("prediction on unexpected topic %s", msg.Topic())
		return
	}
	var p model.Prediction
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		c.log.Errorf("decode prediction for vehicle %s: %v", vehicleID, err)
		return
	}
	p.VehicleID = vehicleID
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.predictions.Record(ctx, p); err != nil {
		c.log.Errorf("record prediction for vehicle %s: %v", vehicleID, err)
		monitoring.CaptureException(err, map[string]string{"module": "mqtt", "vehicle_id": vehicleID})
	}
}

// Disconnect gracefully closes the MQTT connection.
func (c *Consumer) Disconnect() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
