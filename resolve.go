package chatmux

import "strings"

// resolveModel applies provider or gateway prefixing rules to a model name.
// The operation is idempotent: an already-prefixed model passes through.
func (a *Adapter) resolveModel(model string) string {
	if a.gateway != nil {
		// Gateway mode: the gateway's prefix wins; per-model skip rules do
		// not apply.
		if a.gateway.StripModelPrefix {
			if i := strings.LastIndexByte(model, '/'); i >= 0 {
				model = model[i+1:]
			}
		}
		if p := a.gateway.Prefix; p != "" && !strings.HasPrefix(model, p+"/") {
			model = p + "/" + model
		}
		return model
	}

	spec := findByModel(a.specs, model)
	if spec == nil || spec.Prefix == "" {
		return model
	}
	for _, skip := range spec.SkipPrefixes {
		if strings.HasPrefix(model, skip) {
			return model
		}
	}
	return spec.Prefix + "/" + model
}

// effectiveSpec returns the descriptor governing a call: the gateway when one
// was detected, else the record matched by model name.
func (a *Adapter) effectiveSpec(model string) *ProviderSpec {
	if a.gateway != nil {
		return a.gateway
	}
	return findByModel(a.specs, model)
}

// applyOverrides merges the first matching override rule into the request.
// Rules are scanned in declared order against the lower-cased model name and
// only the first match applies.
func (a *Adapter) applyOverrides(model string, req *ChatRequest) {
	spec := a.effectiveSpec(model)
	if spec == nil {
		return
	}
	lower := strings.ToLower(model)
	for _, rule := range spec.Overrides {
		if strings.Contains(lower, rule.Pattern) {
			for key, value := range rule.Params {
				req.setParam(key, value)
			}
			a.logger.Debug("model override applied", "model", model, "pattern", rule.Pattern)
			return
		}
	}
}
