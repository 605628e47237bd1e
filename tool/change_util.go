package tool

import "strconv"

func StrToInt64(str string) int64 {
	data, _ := strconv.ParseInt(str, 10, 64)
	return data
}

func StrToIntWithDefault(str string, def int) int {
	if str == "" {
		return def
	}
	data, err := strconv.Atoi(str)
	if err != nil || data < 0 {
		return def
	}
	return data
}
