package main

// User-facing command descriptions.
const (
	rootShort = "A part-based build pipeline"
	rootLong  = `partforge builds a project from declared parts, driving each part
through the pull, build, stage and strip steps. Step results are
recorded so completed steps are skipped on re-runs, and every part's
output is merged into shared stage and snap trees via hard links.`

	pullShort = "Fetch each part's source and stage packages"
	pullLong  = `Pull fetches every part's source and downloads and unpacks its
declared stage packages into the part's install directory.`

	buildShort = "Build each part"
	buildLong  = `Build runs every part's build after pulling, installing the results
into the part's install directory.`

	stageShort = "Stage each part's files into the shared stage tree"
	stageLong  = `Stage merges every part's install directory into the shared stage
tree after pulling and building. Parts that would place different
content at the same path abort the operation.`

	stripShort = "Strip staged files down to the final output tree"
	stripLong  = `Strip populates the final output tree from the stage tree, keeping
only each part's declared snap fileset.`

	cleanShort = "Clean up part output, optionally from a given step"
	cleanLong  = `Clean removes what lifecycle steps produced, in strip-to-pull order.
With a step argument only that step and later ones are cleaned; without
it everything is, and emptied part directories are removed.`
)
