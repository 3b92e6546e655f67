package resolver

// UpdateInfo reports an available update for a single template:
// what's installed versus what a metadata source currently offers.
type UpdateInfo struct {
	Name       string
	Current    Version
	Available  Version
	UpdateType UpdateType
}

// UpdateQuery filters check_for_updates: an empty Templates list means
// all known templates.
type UpdateQuery struct {
	Templates         []string
	IncludePrerelease bool
}

// CurrentVersions is the injected lookup of each template's
// currently-installed version, queried by CheckForUpdates.
type CurrentVersions interface {
	Current(name string) (Version, bool)
}

// CheckForUpdates compares each queried template's current version
// against the greatest available version from metadata, classifying
// the distance via DetermineUpdateType. Prerelease availables are
// skipped unless IncludePrerelease is set.
func CheckForUpdates(metadata MetadataSource, current CurrentVersions, names []string, query UpdateQuery) ([]UpdateInfo, error) {
	if len(query.Templates) > 0 {
		names = query.Templates
	}

	var updates []UpdateInfo
	for _, name := range names {
		cur, ok := current.Current(name)
		if !ok {
			continue
		}
		versions, err := metadata.Versions(name)
		if err != nil {
			return nil, err
		}
		var best *Version
		for i := range versions {
			v := versions[i]
			if v.HasPrerelease() && !query.IncludePrerelease {
				continue
			}
			if v.Compare(cur) <= 0 {
				continue
			}
			if best == nil || v.Compare(*best) > 0 {
				vv := v
				best = &vv
			}
		}
		if best == nil {
			continue
		}
		updates = append(updates, UpdateInfo{
			Name:       name,
			Current:    cur,
			Available:  *best,
			UpdateType: DetermineUpdateType(cur, *best),
		})
	}
	return updates, nil
}
