package service

import (
	"context"
	"os"
	"strings"

	"github.com/amaumene/syncarr/internal/domain"
	log "github.com/sirupsen/logrus"
)

// LanguageResolver supplies the system display language used when the
// stored preference is "follow system".
type LanguageResolver interface {
	SystemLanguage() string
}

const fallbackLanguage = "en"

type envLanguageResolver struct{}

// NewSystemLanguageResolver resolves the display language from the process
// locale environment.
func NewSystemLanguageResolver() LanguageResolver {
	return envLanguageResolver{}
}

func (envLanguageResolver) SystemLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := os.Getenv(key)
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		// en_US.UTF-8 -> en-US
		if dot := strings.IndexByte(value, '.'); dot >= 0 {
			value = value[:dot]
		}
		return strings.ReplaceAll(value, "_", "-")
	}
	return fallbackLanguage
}

// SettingsMerger applies per-namespace last-write-wins: each of the five
// namespaces is compared and replaced independently, so an edit to one
// namespace never clobbers another.
type SettingsMerger struct {
	settings domain.SettingsRepository
	language LanguageResolver
}

func NewSettingsMerger(settings domain.SettingsRepository, language LanguageResolver) *SettingsMerger {
	return &SettingsMerger{settings: settings, language: language}
}

func (m *SettingsMerger) Merge(ctx context.Context, incoming *domain.Settings) error {
	local, err := m.settings.Load(ctx)
	if err != nil {
		return err
	}

	for _, ns := range domain.Namespaces() {
		if !remoteNewer(local.NamespaceUpdatedAt(ns), incoming.NamespaceUpdatedAt(ns)) {
			continue
		}

		local.ReplaceNamespace(ns, incoming)
		if ns == domain.NamespaceLanguage {
			m.resolveEffectiveLanguage(local)
		}
		if err := m.settings.SaveNamespace(ctx, ns, local); err != nil {
			return err
		}

		log.WithFields(log.Fields{
			"namespace": ns,
			"updatedAt": local.NamespaceUpdatedAt(ns),
		}).Info("settings namespace replaced from snapshot")
	}
	return nil
}

func (m *SettingsMerger) resolveEffectiveLanguage(settings *domain.Settings) {
	if settings.Language.Preferred == domain.LanguageSystem {
		settings.Language.Effective = m.language.SystemLanguage()
		return
	}
	settings.Language.Effective = settings.Language.Preferred
}
