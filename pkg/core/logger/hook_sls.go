package logger

import (
	"fmt"
	"time"

	"linktrack/pkg/core/config"

	sls "github.com/aliyun/aliyun-log-go-sdk"
	"github.com/gogo/protobuf/proto"
	"github.com/sirupsen/logrus"
)

// SlsHook 把 logrus 日志同步写入阿里云日志服务
type SlsHook struct {
	client   sls.ClientInterface
	appName  string
	host     string
	project  string
	logstore string
}

func NewSlsHook(appName, host string, cfg config.LogConfig) *SlsHook {
	provider := sls.NewStaticCredentialsProvider(cfg.AccessKey, cfg.AccessSecret, "")
	return &SlsHook{
		client:   sls.CreateNormalInterfaceV2(cfg.Endpoint, provider),
		appName:  appName,
		host:     host,
		project:  cfg.Project,
		logstore: cfg.Logstore,
	}
}

func (s *SlsHook) Fire(entry *logrus.Entry) error {
	content := make([]*sls.LogContent, 0, len(entry.Data)+2)
	for k, v := range entry.Data {
		content = append(content, &sls.LogContent{
			Key:   proto.String(k),
			Value: proto.String(fmt.Sprintf("%v", v)),
		})
	}
	content = append(content,
		&sls.LogContent{Key: proto.String("message"), Value: proto.String(entry.Message)},
		&sls.LogContent{Key: proto.String("level"), Value: proto.String(entry.Level.String())},
	)

	logGroup := &sls.LogGroup{
		Topic:  proto.String(s.appName),
		Source: proto.String(s.host),
		Logs: []*sls.Log{{
			Time:     proto.Uint32(uint32(time.Now().Unix())),
			Contents: content,
		}},
	}
	return s.client.PutLogs(s.project, s.logstore, logGroup)
}

// Levels debug 级别不投递
func (s *SlsHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}
