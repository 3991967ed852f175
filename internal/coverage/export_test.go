package coverage

var (
	DefaultDeployment  = defaultDeployment
	RiihimakiPerimeter = riihimakiPerimeter
)
