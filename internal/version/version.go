package version

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Заполняются через -ldflags "-X .../internal/version.BuildDate=..."
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// ProtocolVersion - версия протокола сервера, под которую собран клиент.
const ProtocolVersion = "1"

// Отсчет номера сборки
var buildEpoch = time.Date(
	2025, time.December, 4,
	0, 0, 0, 0,
	time.UTC,
)

// VersionInfo - метаданные сборки клиента.
type VersionInfo struct {
	BuildID    int
	BuildDate  string
	Commit     string
	Branch     string
	CI         string
	Protocol   string
	Calculated bool
	Error      string
}

// CalculateBuildID - число дней от buildEpoch до BuildDate.
func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, errors.New("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid BuildDate %q", BuildDate)
	}

	if t.Before(buildEpoch) {
		return 0, errors.Errorf("BuildDate %s is before epoch", BuildDate)
	}

	days := int(t.Sub(buildEpoch).Hours() / 24)
	return days, nil
}

func Info() VersionInfo {
	info := VersionInfo{
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        BuildCI,
		Protocol:  ProtocolVersion,
	}

	id, err := CalculateBuildID()
	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

// Fields - поля для стартовой записи лога
func (v VersionInfo) Fields() logrus.Fields {
	f := logrus.Fields{
		"commit":   coalesce(v.Commit, "unknown"),
		"branch":   coalesce(v.Branch, "unknown"),
		"ci":       coalesce(v.CI, "local"),
		"protocol": v.Protocol,
	}
	if v.Calculated {
		f["build"] = v.BuildID
	}
	return f
}

func String() string {
	info := Info()

	if !info.Calculated {
		return fmt.Sprintf("Client build unknown (%s) protocol[%s]", info.Error, info.Protocol)
	}

	return fmt.Sprintf(
		"Client build %d (%s) commit[%s] branch[%s] ci[%s] protocol[%s]",
		info.BuildID,
		info.BuildDate,
		coalesce(info.Commit, "unknown"),
		coalesce(info.Branch, "unknown"),
		coalesce(info.CI, "local"),
		info.Protocol,
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
