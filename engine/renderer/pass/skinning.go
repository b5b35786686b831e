package pass

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/anima-render/engine/renderer/components"
	"github.com/spaghettifunk/anima-render/engine/renderer/effect"
	"github.com/spaghettifunk/anima-render/engine/renderer/gfx"
)

const jointTransformsSize = components.MaxJoints * 64

func setupSkinningBuffers(b *effect.Builder) {
	b.WithRawConstantBuffer("JointTransforms", jointTransformsSize, gfx.StageVertex)
}

// setJointTransforms uploads the joint matrices of a draw. Unused joints and
// entities without joints get the identity, which renders the bind pose.
func setJointTransforms(eff *effect.Effect, joints *components.JointTransforms) {
	w := gfx.NewStd140(jointTransformsSize)
	for i := 0; i < components.MaxJoints; i++ {
		m := mgl32.Ident4()
		if joints != nil && i < len(joints.Matrices) {
			m = joints.Matrices[i]
		}
		w.Mat4(m)
	}
	eff.UpdateConstantBuffer("JointTransforms", w.Bytes())
}
