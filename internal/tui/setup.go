package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/holinflow/hflow/internal/config"
	"github.com/holinflow/hflow/internal/model"
	"github.com/holinflow/hflow/internal/planapi"
	"github.com/holinflow/hflow/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers collected by the setup wizard. Fields are
// strings where huh edits text.
type SetupValues struct {
	BaseURL    string
	Theme      string
	Risk       model.RiskLevel
	TimeoutSec string
}

// SetupValuesFrom prefills the wizard from an existing config.
func SetupValuesFrom(cfg config.Config) *SetupValues {
	return &SetupValues{
		BaseURL:    cfg.ResolvedBaseURL(),
		Theme:      cfg.Appearance.Theme,
		Risk:       cfg.DefaultRiskLevel(),
		TimeoutSec: strconv.Itoa(cfg.Backend.RequestTimeoutSec),
	}
}

// NewSetupForm builds the first-run wizard. Answers are written into vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	riskOpts := make([]huh.Option[model.RiskLevel], 0, 3)
	for _, r := range model.RiskLevels() {
		riskOpts = append(riskOpts, huh.NewOption(fmt.Sprintf("%s (%s)", r, r.English()), r))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("HolinFlow 설정").
				Description("백엔드 주소와 기본값을 설정합니다.\n`hflow setup`으로 언제든 다시 실행할 수 있습니다."),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("백엔드 주소").
				Description("예: http://localhost:8000").
				Value(&vals.BaseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("요청 제한 시간 (초)").
				Description("0 = 제한 없음").
				Value(&vals.TimeoutSec).
				Validate(validateTimeout),
		),
		huh.NewGroup(
			huh.NewSelect[model.RiskLevel]().
				Title("기본 투자 성향").
				Options(riskOpts...).
				Value(&vals.Risk),
			huh.NewSelect[string]().
				Title("테마").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithShowHelp(true)
}

func validateBaseURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := planapi.NormalizeBaseURL(s)
	return err
}

func validateTimeout(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("0 이상의 정수를 입력하세요")
	}
	return nil
}

// Apply writes the answers into cfg. An empty base URL clears the setting so
// the default origin applies.
func (v SetupValues) Apply(cfg config.Config) (config.Config, error) {
	cfg.Backend.BaseURL = ""
	if u := strings.TrimSpace(v.BaseURL); u != "" {
		norm, err := planapi.NormalizeBaseURL(u)
		if err != nil {
			return cfg, err
		}
		cfg.Backend.BaseURL = norm
	}

	if s := strings.TrimSpace(v.TimeoutSec); s != "" {
		if err := validateTimeout(s); err != nil {
			return cfg, fmt.Errorf("request timeout: %w", err)
		}
		cfg.Backend.RequestTimeoutSec, _ = strconv.Atoi(s)
	}

	if _, ok := theme.Lookup(v.Theme); ok {
		cfg.Appearance.Theme = v.Theme
	}
	if v.Risk.Valid() {
		cfg.General.DefaultRisk = string(v.Risk)
	}
	return cfg, cfg.Validate()
}
