package main

import "fmt"

func scale(x, k int) int {
	return x * k
}

func apply(f func(int) int, x int) int {
	return f(x)
}

func main() {
	k := 3
	fmt.Println(apply(func(x int) int { return scale(x, k) }, 2))
}
