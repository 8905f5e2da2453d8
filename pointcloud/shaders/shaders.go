package shaders

import (
	_ "embed"
)

//go:embed pointcloud.wgsl
var PointCloudWGSL string
