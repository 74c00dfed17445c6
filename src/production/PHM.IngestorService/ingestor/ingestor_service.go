package phmingestor

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	client "gitlab.com/maplesense1/phm.server/src/production/PHM.Client"
	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Interfaces"
)

const (
	topicPrefix = "sensors"
	topicSuffix = "healthlog"
	errorTopic  = "ingestor/errors/%s"

	queueSize = 4096
)

// APIClient is the part of the API the ingestor depends on
type APIClient interface {
	Login(ctx context.Context, username, password string) (*api_models.AuthResponse, error)
	CreateHealthLog(ctx context.Context, plantID int64, in phmmodels.HealthLogInput) (*phmmodels.HealthLog, error)
	Health(ctx context.Context) error
}

// sensorReading is a decoded message waiting in the batch queue
type sensorReading struct {
	PlantID    int64
	Topic      string
	Input      phmmodels.HealthLogInput
	Raw        map[string]interface{}
	ReceivedAt time.Time
}

type Ingestor struct {
	cfg        *config.IngestorConfig
	api        APIClient
	archive    interfaces.RawReadingRepository
	mqttClient mqtt.Client
	msgCh      chan sensorReading
	done       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
	logger     *logger.Logger

	publish func(topic string, payload []byte) error
}

// New creates an ingestor. archive may be nil to skip raw archiving.
func New(cfg *config.IngestorConfig, api APIClient, archive interfaces.RawReadingRepository, log *logger.Logger) *Ingestor {
	i := &Ingestor{
		cfg:     cfg,
		api:     api,
		archive: archive,
		msgCh:   make(chan sensorReading, queueSize),
		done:    make(chan struct{}),
		logger:  log.WithComponent("ingestor"),
	}
	i.publish = i.mqttPublish
	return i
}

func (i *Ingestor) Start(ctx context.Context) error {
	if _, err := i.api.Login(ctx, i.cfg.Username, i.cfg.Password); err != nil {
		// Retried on the first rejected write
		i.logger.Logger.Warn().Err(err).Str("username", i.cfg.Username).Msg("Initial API login failed")
	}

	opts := mqtt.NewClientOptions().
		AddBroker(i.cfg.GetMQTTBrokerURL()).
		SetClientID(i.cfg.MQTT.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(i.cfg.MQTT.KeepAlive).
		SetPingTimeout(i.cfg.MQTT.PingTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if i.cfg.MQTT.BrokerUser != "" {
		opts.SetUsername(i.cfg.MQTT.BrokerUser)
		opts.SetPassword(i.cfg.MQTT.BrokerPass)
	}

	if i.cfg.MQTT.UseTLS {
		tlsCfg, err := tlsConfig(i.cfg.MQTT.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		i.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := i.subscription()
		i.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, i.onMessage); token.Wait() && token.Error() != nil {
			i.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	i.mqttClient = mqtt.NewClient(opts)
	if tk := i.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	i.startWriter(ctx)
	return nil
}

func (i *Ingestor) startWriter(ctx context.Context) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		i.batchWriter(ctx)
	}()
}

// Stop disconnects from the broker and flushes what is queued. msgCh stays
// open because broker callbacks may still be running; they see done instead.
func (i *Ingestor) Stop() {
	i.stopOnce.Do(func() {
		if i.mqttClient != nil && i.mqttClient.IsConnected() {
			i.mqttClient.Disconnect(500)
		}
		close(i.done)
		i.wg.Wait()
	})
}

func (i *Ingestor) IsConnected() bool {
	return i.mqttClient != nil && i.mqttClient.IsConnected()
}

func (i *Ingestor) subscription() string {
	if i.cfg.MQTT.SharedGroup != "" {
		return fmt.Sprintf("$share/%s/%s", i.cfg.MQTT.SharedGroup, i.cfg.MQTT.Topic)
	}
	return i.cfg.MQTT.Topic
}

func (i *Ingestor) onMessage(_ mqtt.Client, m mqtt.Message) {
	i.handleMessage(m.Topic(), m.Payload())
}

// handleMessage validates one message and queues it. Rejected messages
// are reported on the error topic and dropped.
func (i *Ingestor) handleMessage(topic string, payload []byte) {
	i.logger.Logger.Debug().Str("topic", topic).Str("payload", string(payload)).Msg("Received MQTT message")

	plantID, label, err := parseTopic(topic)
	if err != nil {
		i.logger.Logger.Warn().Str("topic", topic).Str("expected", "sensors/<plant_id>/healthlog").Msg("Invalid topic format")
		i.publishError(label, "invalid_topic", err.Error())
		return
	}

	input, raw, err := parsePayload(payload)
	if err != nil {
		i.logger.Logger.Warn().Err(err).Int64("plant_id", plantID).Msg("Invalid health log payload")
		i.publishError(label, "invalid_payload", err.Error())
		return
	}

	rd := sensorReading{
		PlantID:    plantID,
		Topic:      topic,
		Input:      input,
		Raw:        raw,
		ReceivedAt: time.Now().UTC(),
	}

	select {
	case <-i.done:
		i.logger.Logger.Warn().Int64("plant_id", plantID).Msg("Ingestor stopped, dropping reading")
		return
	default:
	}

	select {
	case i.msgCh <- rd:
	case <-i.done:
		i.logger.Logger.Warn().Int64("plant_id", plantID).Msg("Ingestor stopped, dropping reading")
	}
}

// parseTopic extracts the plant id from sensors/<plant_id>/healthlog. The
// returned label names the plant in error reports even when parsing fails.
func parseTopic(topic string) (int64, string, error) {
	parts := strings.Split(topic, "/")
	label := "unknown"
	if len(parts) >= 2 && parts[1] != "" {
		label = parts[1]
	}

	if len(parts) != 3 || parts[0] != topicPrefix || parts[2] != topicSuffix {
		return 0, label, fmt.Errorf("invalid topic format: %s, expected: sensors/<plant_id>/healthlog", topic)
	}

	plantID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || plantID <= 0 {
		return 0, label, fmt.Errorf("invalid plant id %q in topic %s", parts[1], topic)
	}
	return plantID, label, nil
}

func parsePayload(payload []byte) (phmmodels.HealthLogInput, map[string]interface{}, error) {
	var input phmmodels.HealthLogInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return input, nil, fmt.Errorf("payload is not a health log: %w", err)
	}
	if input.LogDate != "" {
		if _, err := phmmodels.ParseDate(input.LogDate); err != nil {
			return input, nil, fmt.Errorf("log_date must be YYYY-MM-DD")
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return input, nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	return input, raw, nil
}

func (i *Ingestor) batchWriter(ctx context.Context) {
	batch := make([]sensorReading, 0, i.cfg.BatchSize)
	timer := time.NewTimer(i.cfg.BatchWindow)
	defer timer.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		i.flush(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case <-i.done:
			batch = i.drain(batch)
			flush()
			return
		case rd := <-i.msgCh:
			batch = append(batch, rd)
			if len(batch) >= i.cfg.BatchSize {
				flush()
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(i.cfg.BatchWindow)
			}
		case <-timer.C:
			flush()
			timer.Reset(i.cfg.BatchWindow)
		}
	}
}

// drain appends everything already queued without blocking
func (i *Ingestor) drain(batch []sensorReading) []sensorReading {
	for {
		select {
		case rd := <-i.msgCh:
			batch = append(batch, rd)
		default:
			return batch
		}
	}
}

func (i *Ingestor) flush(ctx context.Context, batch []sensorReading) {
	i.logger.Logger.Info().Int("batch_size", len(batch)).Msg("Flushing batch to API service")

	i.archiveBatch(ctx, batch)

	written := 0
	for _, rd := range batch {
		label := strconv.FormatInt(rd.PlantID, 10)
		if err := i.writeReading(ctx, rd); err != nil {
			errorType := "create_health_log_error"
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				errorType = "plant_not_found"
			}
			i.logger.Logger.Error().Err(err).Int64("plant_id", rd.PlantID).Msg("Error creating health log via API")
			i.publishError(label, errorType, fmt.Sprintf("Failed to create health log: %v", err))
			continue
		}
		written++
	}

	i.logger.Logger.Info().Int("count", written).Int("failed", len(batch)-written).Msg("Processed readings")
}

// writeReading posts one reading, logging in again once if the token was rejected
func (i *Ingestor) writeReading(ctx context.Context, rd sensorReading) error {
	_, err := i.api.CreateHealthLog(ctx, rd.PlantID, rd.Input)

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
		i.logger.Logger.Info().Int("status", apiErr.StatusCode).Msg("API rejected token, logging in again")
		if _, loginErr := i.api.Login(ctx, i.cfg.Username, i.cfg.Password); loginErr != nil {
			return fmt.Errorf("re-login failed: %w", loginErr)
		}
		_, err = i.api.CreateHealthLog(ctx, rd.PlantID, rd.Input)
	}
	return err
}

func (i *Ingestor) archiveBatch(ctx context.Context, batch []sensorReading) {
	if i.archive == nil {
		return
	}

	docs := make([]phmmodels.RawReading, 0, len(batch))
	for _, rd := range batch {
		docs = append(docs, phmmodels.RawReading{
			Topic:      rd.Topic,
			PlantID:    rd.PlantID,
			Payload:    rd.Raw,
			ReceivedAt: rd.ReceivedAt,
		})
	}
	if err := i.archive.InsertMany(ctx, docs); err != nil {
		i.logger.Logger.Error().Err(err).Int("count", len(docs)).Msg("Failed to archive raw readings")
	}
}

// publishError reports a rejected message on ingestor/errors/<plant_id>
func (i *Ingestor) publishError(plantLabel, errorType, message string) {
	errorPayload := map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"plant_id":   plantLabel,
		"timestamp":  time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(errorPayload)
	if err != nil {
		i.logger.Logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	topic := fmt.Sprintf(errorTopic, plantLabel)
	if err := i.publish(topic, payloadJSON); err != nil {
		i.logger.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish error")
		return
	}
	i.logger.Logger.Debug().Str("topic", topic).Str("message", message).Msg("Published error")
}

func (i *Ingestor) mqttPublish(topic string, payload []byte) error {
	if !i.IsConnected() {
		return nil
	}
	token := i.mqttClient.Publish(topic, 1, false, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}
