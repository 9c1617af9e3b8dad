package cli

// Run
type RunParams struct {
	Image          string
	BackendVersion string
	Command        []string
}

func runParamsFrom(inv *Invocation) *RunParams {
	return &RunParams{
		Image:          stringFlag(inv, "image"),
		BackendVersion: stringFlag(inv, "backend-version"),
		Command:        inv.Rest,
	}
}

// Images
type ImagesParams struct {
	Pick bool
}

func imagesParamsFrom(inv *Invocation) *ImagesParams {
	return &ImagesParams{
		Pick: boolFlag(inv, "pick"),
	}
}

// ImagesAdd
type ImagesAddParams struct {
	Name     string
	URL      string
	Encoding string
}

func imagesAddParamsFrom(inv *Invocation) *ImagesAddParams {
	return &ImagesAddParams{
		Name:     inv.Args["name"],
		URL:      inv.Args["url"],
		Encoding: stringFlag(inv, "encoding"),
	}
}

// ImagesRm
type ImagesRmParams struct {
	Name string
}

func imagesRmParamsFrom(inv *Invocation) *ImagesRmParams {
	return &ImagesRmParams{
		Name: inv.Args["name"],
	}
}

// Clean
type CleanParams struct {
	DryRun bool
}

func cleanParamsFrom(inv *Invocation) *CleanParams {
	return &CleanParams{
		DryRun: boolFlag(inv, "dry-run"),
	}
}

func stringFlag(inv *Invocation, name string) string {
	if v, ok := inv.Flags[name].(string); ok {
		return v
	}
	return ""
}

func boolFlag(inv *Invocation, name string) bool {
	v, ok := inv.Flags[name].(bool)
	return ok && v
}
