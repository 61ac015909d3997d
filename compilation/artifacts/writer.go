package artifacts

import (
	"encoding/json"

	"github.com/crytic/solbuild/compilation/types"
	"github.com/crytic/solbuild/utils"
	"github.com/pkg/errors"
)

// Build assigns paths to every artifact of the output (see AssignPaths) and converts them with the given converter.
// The returned artifacts hold their content but are not written.
func Build(output *types.AggregatedCompilerOutput, cached []*types.ArtifactFile, converter Converter) ([]*types.ArtifactFile, error) {
	pending := assignPaths(output, cached)
	artifacts := make([]*types.ArtifactFile, 0, len(pending))
	for _, p := range pending {
		var (
			content json.RawMessage
			err     error
		)
		if p.contract != nil {
			content, err = converter.Convert(p.artifact.File, p.artifact.Contract, *p.contract)
		} else {
			content, err = converter.ConvertStandalone(p.artifact.File, *p.source)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to convert %s:%s to a %s artifact", p.artifact.File, p.artifact.Contract, converter.Format())
		}
		p.artifact.Content = content
		artifacts = append(artifacts, p.artifact)
	}
	return artifacts, nil
}

// Write writes the content of every artifact to the artifacts directory. Cached artifacts, which have no content, are
// skipped. Returns the number of files written.
func Write(artifactsDir string, artifacts []*types.ArtifactFile) (int, error) {
	written := 0
	for _, artifact := range artifacts {
		if artifact.Cached || artifact.Content == nil {
			continue
		}
		if err := utils.WriteFileAtomic(artifact.AbsolutePath(artifactsDir), artifact.Content, 0644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// WriteBuildInfos writes the build info document of every build which carries one. Returns the number of files
// written.
func WriteBuildInfos(paths types.ProjectPaths, buildInfos []*types.RawBuildInfo) (int, error) {
	written := 0
	for _, buildInfo := range buildInfos {
		if buildInfo.Build == nil {
			continue
		}
		data, err := json.Marshal(buildInfo.Build)
		if err != nil {
			return written, errors.WithStack(err)
		}
		if err = utils.WriteFileAtomic(paths.BuildInfoPath(buildInfo.ID), data, 0644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
