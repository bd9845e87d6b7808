package version

import (
	"strconv"
	"time"

	"github.com/Masterminds/semver"
	"github.com/rs/zerolog/log"

	"github.com/techwm-project/techwm/pkg/models"
)

// Get returns the version the binary was built from. Values that fail to
// parse are logged and left empty.
func Get() *models.BuildVersionInfo {
	versionInfo := &models.BuildVersionInfo{
		GitVersion: GITVERSION,
		GitCommit:  GITCOMMIT,
		GOOS:       GOOS,
		GOARCH:     GOARCH,
	}

	s, err := semver.NewVersion(GITVERSION)
	if err != nil {
		log.Warn().Err(err).Msgf("could not parse GITVERSION %q", GITVERSION)
	} else {
		versionInfo.Major = strconv.FormatInt(s.Major(), 10) //nolint:gomnd
		versionInfo.Minor = strconv.FormatInt(s.Minor(), 10) //nolint:gomnd
	}

	buildDate, err := time.Parse(time.RFC3339, BUILDDATE)
	if err != nil {
		log.Warn().Err(err).Msgf("could not parse BUILDDATE %q", BUILDDATE)
	} else {
		versionInfo.BuildDate = buildDate
	}

	return versionInfo
}
