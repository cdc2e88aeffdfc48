package domain

// Project is an assembled unit tree together with the options declared next to it.
type Project struct {
	// File is the path of the project file the graph was loaded from.
	File    string
	Graph   *Graph
	Options Options
}
