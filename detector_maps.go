package waffles

// Static channel layouts for the ProtoDUNE photon-detection system. The HD
// cryostat carries four APAs of 40 channels each; the VD cryostat carries
// membrane modules on the TCO and non-TCO sides. Row/column order follows
// the physical arrangement used for grid plots.

func uc(endpoint, channel int) UniqueChannel {
	return UniqueChannel{Endpoint: endpoint, Channel: channel}
}

func mustMap(cm *ChannelMap, err error) *ChannelMap {
	if err != nil {
		panic(err)
	}
	return cm
}

// APAMaps maps APA number (1-4) to its channel layout.
var APAMaps = map[int]*ChannelMap{
	1: mustMap(NewAPAMap([][]UniqueChannel{
		{uc(104, 7), uc(104, 5), uc(104, 2), uc(104, 0)},
		{uc(104, 1), uc(104, 3), uc(104, 4), uc(104, 6)},
		{uc(104, 17), uc(104, 15), uc(104, 12), uc(104, 10)},
		{uc(104, 11), uc(104, 13), uc(104, 14), uc(104, 16)},
		{uc(105, 7), uc(105, 5), uc(105, 2), uc(105, 0)},
		{uc(105, 1), uc(105, 3), uc(105, 4), uc(105, 6)},
		{uc(105, 26), uc(105, 24), uc(105, 23), uc(105, 21)},
		{uc(105, 10), uc(105, 12), uc(105, 15), uc(105, 17)},
		{uc(107, 17), uc(107, 15), uc(107, 12), uc(107, 10)},
		{uc(107, 0), uc(107, 2), uc(107, 5), uc(107, 7)},
	})),
	2: mustMap(NewAPAMap([][]UniqueChannel{
		{uc(109, 27), uc(109, 25), uc(109, 22), uc(109, 20)},
		{uc(109, 21), uc(109, 23), uc(109, 24), uc(109, 26)},
		{uc(109, 37), uc(109, 35), uc(109, 32), uc(109, 30)},
		{uc(109, 31), uc(109, 33), uc(109, 34), uc(109, 36)},
		{uc(109, 7), uc(109, 5), uc(109, 2), uc(109, 0)},
		{uc(109, 1), uc(109, 3), uc(109, 4), uc(109, 6)},
		{uc(109, 17), uc(109, 15), uc(109, 12), uc(109, 10)},
		{uc(109, 11), uc(109, 13), uc(109, 14), uc(109, 16)},
		{uc(109, 47), uc(109, 45), uc(109, 42), uc(109, 40)},
		{uc(109, 41), uc(109, 43), uc(109, 44), uc(109, 46)},
	})),
	3: mustMap(NewAPAMap([][]UniqueChannel{
		{uc(111, 1), uc(111, 3), uc(111, 4), uc(111, 6)},
		{uc(111, 36), uc(111, 34), uc(111, 33), uc(111, 31)},
		{uc(111, 0), uc(111, 2), uc(111, 5), uc(111, 7)},
		{uc(111, 37), uc(111, 35), uc(111, 32), uc(111, 30)},
		{uc(111, 41), uc(111, 43), uc(111, 44), uc(111, 46)},
		{uc(111, 16), uc(111, 14), uc(111, 13), uc(111, 11)},
		{uc(111, 10), uc(111, 12), uc(111, 15), uc(111, 17)},
		{uc(111, 26), uc(111, 24), uc(111, 23), uc(111, 21)},
		{uc(111, 40), uc(111, 42), uc(111, 45), uc(111, 47)},
		{uc(111, 27), uc(111, 25), uc(111, 22), uc(111, 20)},
	})),
	4: mustMap(NewAPAMap([][]UniqueChannel{
		{uc(112, 0), uc(112, 2), uc(112, 5), uc(112, 7)},
		{uc(112, 6), uc(112, 4), uc(112, 3), uc(112, 1)},
		{uc(112, 10), uc(112, 12), uc(112, 15), uc(112, 17)},
		{uc(112, 16), uc(112, 14), uc(112, 13), uc(112, 11)},
		{uc(113, 0), uc(113, 2), uc(113, 5), uc(113, 7)},
		{uc(112, 27), uc(112, 25), uc(112, 22), uc(112, 20)},
		{uc(112, 21), uc(112, 23), uc(112, 24), uc(112, 26)},
		{uc(112, 37), uc(112, 35), uc(112, 32), uc(112, 30)},
		{uc(112, 31), uc(112, 33), uc(112, 34), uc(112, 36)},
		{uc(112, 47), uc(112, 45), uc(112, 42), uc(112, 40)},
	})),
}

// MembraneGeoMaps maps the VD membrane side (1 = non-TCO, 2 = TCO) to its
// geometry-ordered layout.
var MembraneGeoMaps = map[int]*ChannelMap{
	1: mustMap(NewMembraneGeoMap([][]UniqueChannel{
		{uc(107, 47), uc(107, 45)},
		{uc(107, 40), uc(107, 42)},
		{uc(107, 7), uc(107, 0)},
		{uc(107, 27), uc(107, 20)},
	})),
	2: mustMap(NewMembraneGeoMap([][]UniqueChannel{
		{uc(107, 46), uc(107, 44)},
		{uc(107, 43), uc(107, 41)},
		{uc(107, 37), uc(107, 30)},
		{uc(107, 17), uc(107, 10)},
	})),
}

// MembraneIndMap is the induction-ordered layout of the VD membrane
// channels, both sides in one 4x4 grid.
var MembraneIndMap = mustMap(NewMembraneIndMap([][]UniqueChannel{
	{uc(107, 47), uc(107, 45), uc(107, 7), uc(107, 0)},
	{uc(107, 40), uc(107, 42), uc(107, 27), uc(107, 20)},
	{uc(107, 46), uc(107, 44), uc(107, 37), uc(107, 30)},
	{uc(107, 43), uc(107, 41), uc(107, 17), uc(107, 10)},
}))
