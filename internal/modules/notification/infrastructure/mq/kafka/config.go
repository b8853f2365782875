package kafka

import (
	"strings"

	"FPKProgress/internal/config"

	"github.com/IBM/sarama"
)

// Options 从 kafkaConfig 读取的连接参数
type Options struct {
	Brokers  []string
	ClientID string
}

func OptionsFromConfig(conf config.KafkaConfig) Options {
	brokers := make([]string, 0, len(conf.Brokers))
	for _, b := range conf.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return Options{Brokers: brokers, ClientID: strings.TrimSpace(conf.ClientID)}
}

// Enabled 未配置 broker 时整个投递链路关闭，通知只落库
func (o Options) Enabled() bool {
	return len(o.Brokers) > 0
}

func newSaramaConfig(clientID string) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_8_0_0
	if clientID != "" {
		sc.ClientID = clientID
	}
	return sc
}
