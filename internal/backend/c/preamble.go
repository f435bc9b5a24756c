package c

// preamble is the fixed runtime header prepended to every translation
// unit. Its text never depends on the input program, so identical sources
// produce byte-identical output.
const preamble = `/* Generated by contractus. Do not edit. */
#include <stdint.h>
#include <stdio.h>
#include <stdlib.h>

typedef struct {
    void*   ptr;
    int32_t len;
} ctx_slice;

static void* ctx_alloc(int32_t size) {
    void* p = malloc((size_t)size);
    if (p == NULL) {
        fprintf(stderr, "contractus: out of memory\n");
        exit(1);
    }
    return p;
}

static void ctx_free(void* p) {
    free(p);
}

static void ctx_print_i32(int32_t v) {
    printf("%d\n", v);
}

static void ctx_print_bool(int v) {
    printf(v ? "true\n" : "false\n");
}

static void ctx_print_u8(uint8_t v) {
    printf("%u\n", (unsigned)v);
}

`
