package theme

import (
	"fmt"

	appErrors "themekit/internal/errors"
)

func invalidThemeError(reason string) error {
	return appErrors.New(appErrors.CodeInvalidTheme, reason, nil)
}

func duplicateIDError(id string) error {
	return appErrors.New(appErrors.CodeDuplicateID, fmt.Sprintf("duplicate theme id: %s", id), nil)
}

func unknownDefaultIDError(id string) error {
	return appErrors.New(appErrors.CodeUnknownDefaultID, fmt.Sprintf("default theme %q is not registered", id), nil)
}

func unknownIDError(id string) error {
	return appErrors.New(appErrors.CodeUnknownID, fmt.Sprintf("unknown theme id: %s", id), nil)
}

func activeThemeRemovalError(id string) error {
	return appErrors.New(appErrors.CodeActiveThemeRemoval, fmt.Sprintf("cannot remove active theme %s", id), nil)
}

func conflictingInitPolicyError(reason string) error {
	return appErrors.New(appErrors.CodeConflictingInitPolicy, reason, nil)
}

func configurationError(reason string) error {
	return appErrors.New(appErrors.CodeConfigurationError, reason, nil)
}

func persistenceError(msg string, err error) error {
	return appErrors.New(appErrors.CodePersistenceFailed, msg, err)
}

func observerPanicError(observer string, recovered any) error {
	return appErrors.New(appErrors.CodeSubscriberPanic, fmt.Sprintf("%s panicked: %v", observer, recovered), nil)
}
