// Package core provides shared framework types: cross-platform locators,
// wait defaults, and the error taxonomy used across drivers and verifiers.
package core

import "fmt"

// Strategy identifies a locator strategy understood by the automation server.
type Strategy string

// Supported locator strategies.
const (
	StrategyXPath           Strategy = "xpath"
	StrategyAccessibilityID Strategy = "accessibility id"
	StrategyUIAutomator     Strategy = "-android uiautomator"
	StrategyIOSPredicate    Strategy = "-ios predicate string"
	StrategyIOSClassChain   Strategy = "-ios class chain"
)

// Locator pairs a strategy with its value.
type Locator struct {
	Strategy Strategy `json:"strategy"`
	Value    string   `json:"value"`
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.Strategy == "" && l.Value == ""
}

// ByID matches elements whose id or resource-id contains the value.
func ByID(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@id,'%s') or contains(@resource-id,'%s')]", v, v)}
}

// ByResourceID matches elements whose resource-id contains the value.
func ByResourceID(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@resource-id,'%s')]", v)}
}

// ByText matches elements with the exact text.
func ByText(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[@text = '%s']", v)}
}

// ByContains matches elements where any common attribute contains the value.
func ByContains(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(
		".//*[contains(@text,'%[1]s') or contains(@id,'%[1]s') or contains(@resource-id,'%[1]s') or "+
			"contains(@content-desc,'%[1]s') or contains(@name,'%[1]s') or contains(@label,'%[1]s') or contains(@value,'%[1]s')]", v)}
}

// ByExactMatch matches elements where any common attribute equals the value.
func ByExactMatch(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(
		".//*[(@text='%[1]s' or @id='%[1]s' or @resource-id='%[1]s' or @content-desc='%[1]s' or "+
			"@name='%[1]s' or @label='%[1]s' or @value='%[1]s')]", v)}
}

// ByContentDesc matches elements whose content-desc contains the value.
func ByContentDesc(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@content-desc,'%s')]", v)}
}

// ByName matches elements whose name contains the value (iOS).
func ByName(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@name,'%s')]", v)}
}

// ByLabel matches elements whose label contains the value (iOS).
func ByLabel(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@label,'%s')]", v)}
}

// ByValue matches elements whose value attribute contains the value.
func ByValue(v string) Locator {
	return Locator{StrategyXPath, fmt.Sprintf(".//*[contains(@value,'%s')]", v)}
}

// ByXPath uses a raw XPath expression.
func ByXPath(v string) Locator {
	return Locator{StrategyXPath, v}
}

// ByAccessibilityID uses the accessibility id strategy.
func ByAccessibilityID(v string) Locator {
	return Locator{StrategyAccessibilityID, v}
}

// ByUIAutomator uses a raw UiAutomator expression (Android).
func ByUIAutomator(v string) Locator {
	return Locator{StrategyUIAutomator, v}
}

// ByIOSClassChain uses an iOS class chain expression.
func ByIOSClassChain(v string) Locator {
	return Locator{StrategyIOSClassChain, v}
}

// ByIOSPredicate uses an iOS predicate string.
func ByIOSPredicate(v string) Locator {
	return Locator{StrategyIOSPredicate, v}
}

// PageElement is a cross-platform locator wrapper. One of the platform
// locators may be unset when the element only exists on one platform.
type PageElement struct {
	Android Locator `json:"android,omitempty"`
	IOS     Locator `json:"ios,omitempty"`
}

// Get returns the locator for the given platform ("android" or "ios").
func (p PageElement) Get(platform string) (Locator, error) {
	switch platform {
	case "android":
		if p.Android.IsZero() {
			return Locator{}, ErrMissingRequired.WithMessage("no android locator defined for element")
		}
		return p.Android, nil
	case "ios":
		if p.IOS.IsZero() {
			return Locator{}, ErrMissingRequired.WithMessage("no ios locator defined for element")
		}
		return p.IOS, nil
	default:
		return Locator{}, ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown platform: %s", platform))
	}
}
